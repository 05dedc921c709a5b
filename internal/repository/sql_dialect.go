package repository

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// dbDialectName 获取数据库方言名称，默认按 sqlite 处理。
func dbDialectName(db *gorm.DB) string {
	if db == nil || db.Dialector == nil {
		return "sqlite"
	}
	name := strings.ToLower(strings.TrimSpace(db.Dialector.Name()))
	if name == "" {
		return "sqlite"
	}
	return name
}

// buildContainsCondition 构建大小写不敏感的子串匹配条件，兼容 sqlite 与 postgres。
// column 需为已按 strings.ToLower 归一化的列。
func buildContainsCondition(db *gorm.DB, column, keyword string) (string, string) {
	return buildContainsConditionByDialect(dbDialectName(db), column, keyword)
}

func buildContainsConditionByDialect(dialect, column, keyword string) (string, string) {
	like := "%" + likeEscaper.Replace(strings.ToLower(keyword)) + "%"
	switch strings.ToLower(strings.TrimSpace(dialect)) {
	case "postgres", "postgresql":
		// postgres 的 LIKE 默认以反斜杠转义
		return fmt.Sprintf("%s LIKE ?", column), like
	default:
		return fmt.Sprintf(`%s LIKE ? ESCAPE '\'`, column), like
	}
}
