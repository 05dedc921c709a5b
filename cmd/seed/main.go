package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/desi-etsy/internal/config"
	"github.com/desi-etsy/internal/logger"
	"github.com/desi-etsy/internal/models"
	"github.com/desi-etsy/internal/repository"
	"github.com/desi-etsy/internal/service"

	"github.com/shopspring/decimal"
)

type seedProduct struct {
	Title       string
	Description string
	Category    string
	Price       string
	Image       string
	SortOrder   int
}

var demoProducts = []seedProduct{
	{
		Title:       "Banarasi Silk Saree",
		Description: "Handwoven pure silk saree with zari border from Varanasi weavers.",
		Category:    "Sarees",
		Price:       "2499.00",
		Image:       "https://images.unsplash.com/photo-1610030469983-98e550d6193c?w=800",
		SortOrder:   100,
	},
	{
		Title:       "Block Print Cotton Kurta",
		Description: "Jaipur hand block printed cotton kurta dyed with natural colours.",
		Category:    "Clothing",
		Price:       "899.00",
		Image:       "https://images.unsplash.com/photo-1583391733956-6c78276477e2?w=800",
		SortOrder:   90,
	},
	{
		Title:       "Brass Diya Set",
		Description: "Set of four hand cast brass oil lamps for festive decor.",
		Category:    "Decor",
		Price:       "349.50",
		Image:       "https://images.unsplash.com/photo-1605002123376-3b2e7f8bd2b5?w=800",
		SortOrder:   80,
	},
	{
		Title:       "Madhubani Painting",
		Description: "Original Mithila folk art on handmade paper, framed.",
		Category:    "Art",
		Price:       "1799.00",
		Image:       "https://images.unsplash.com/photo-1578301978693-85fa9c0320b9?w=800",
		SortOrder:   70,
	},
	{
		Title:       "Terracotta Jhumka Earrings",
		Description: "Lightweight hand painted terracotta earrings.",
		Category:    "Jewellery",
		Price:       "249.00",
		Image:       "https://images.unsplash.com/photo-1535632066927-ab7c9ab60908?w=800",
		SortOrder:   60,
	},
	{
		Title:       "Kashmiri Pashmina Shawl",
		Description: "Soft pashmina shawl with sozni embroidery.",
		Category:    "Clothing",
		Price:       "3299.00",
		Image:       "https://images.unsplash.com/photo-1601762603339-fd61e28b698a?w=800",
		SortOrder:   50,
	},
	{
		Title:       "Channapatna Wooden Toys",
		Description: "Lacquered wooden toy set made with vegetable dyes.",
		Category:    "Toys",
		Price:       "599.00",
		Image:       "https://images.unsplash.com/photo-1596461404969-9ae70f2830c1?w=800",
		SortOrder:   40,
	},
	{
		Title:       "Blue Pottery Vase",
		Description: "Jaipur blue pottery vase with floral motifs.",
		Category:    "Decor",
		Price:       "749.00",
		Image:       "https://images.unsplash.com/photo-1578749556568-bc2c40e68b61?w=800",
		SortOrder:   30,
	},
}

func main() {
	reset := flag.Bool("reset", false, "删除已存在的演示商品后重新创建")
	flag.Parse()

	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}, false); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}
	defer models.CloseDB()

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	repo := repository.NewProductRepository(models.DB)
	svc := service.NewProductService(repo, 0)
	ctx := context.Background()

	created := 0
	for _, item := range demoProducts {
		existing, err := repo.GetByTitle(item.Title)
		if err != nil {
			stdLog.Printf("Failed to query product %s: %v", item.Title, err)
			continue
		}
		if existing != nil && !*reset {
			stdLog.Printf("Product already exists: %s", item.Title)
			continue
		}
		if existing != nil {
			if err := svc.Delete(ctx, existing.ID); err != nil {
				stdLog.Printf("Failed to reset product %s: %v", item.Title, err)
				continue
			}
			stdLog.Printf("Reset product: %s", item.Title)
		}
		price, err := decimal.NewFromString(item.Price)
		if err != nil {
			stdLog.Printf("Invalid price for %s: %v", item.Title, err)
			continue
		}
		if _, err := svc.Create(ctx, service.CreateProductInput{
			Title:       item.Title,
			Description: item.Description,
			Category:    item.Category,
			Price:       price,
			Image:       item.Image,
			SortOrder:   item.SortOrder,
		}); err != nil {
			stdLog.Printf("Failed to create product %s: %v", item.Title, err)
			continue
		}
		created++
		stdLog.Printf("Created product: %s", item.Title)
	}

	fmt.Println("\n✅ Demo catalog ready!")
	fmt.Printf("- %d products created, %d in seed list\n", created, len(demoProducts))
}
