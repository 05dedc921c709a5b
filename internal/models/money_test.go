package models

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
)

func TestMoneyMarshalAsNumber(t *testing.T) {
	payload, err := json.Marshal(struct {
		Price Money `json:"price"`
	}{Price: NewMoneyFromDecimal(decimal.RequireFromString("12.5"))})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(payload) != `{"price":12.50}` {
		t.Fatalf("unexpected payload %s", payload)
	}
}

func TestMoneyUnmarshal(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{raw: `"19.999"`, want: "20.00"},
		{raw: `7`, want: "7.00"},
		{raw: `0.1`, want: "0.10"},
	}
	for _, tc := range cases {
		var m Money
		if err := json.Unmarshal([]byte(tc.raw), &m); err != nil {
			t.Fatalf("unmarshal %s failed: %v", tc.raw, err)
		}
		if m.String() != tc.want {
			t.Fatalf("unmarshal %s want %s got %s", tc.raw, tc.want, m.String())
		}
	}

	var bad Money
	if err := json.Unmarshal([]byte(`"abc"`), &bad); err == nil {
		t.Fatalf("invalid amount should fail")
	}
}

func TestProductBeforeCreateAssignsID(t *testing.T) {
	p := &Product{Title: "Brass Lamp"}
	if err := p.BeforeCreate(nil); err != nil {
		t.Fatalf("before create failed: %v", err)
	}
	if len(p.ID) != 36 {
		t.Fatalf("id should be a uuid, got %q", p.ID)
	}
	keep := &Product{ID: "fixed-id"}
	_ = keep.BeforeCreate(nil)
	if keep.ID != "fixed-id" {
		t.Fatalf("explicit id should be kept, got %q", keep.ID)
	}
}
