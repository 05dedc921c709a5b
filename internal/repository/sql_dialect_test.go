package repository

import "testing"

func TestBuildContainsConditionByDialect(t *testing.T) {
	cases := []struct {
		dialect   string
		keyword   string
		condition string
		arg       string
	}{
		{dialect: "sqlite", keyword: "Lamp", condition: `title_search LIKE ? ESCAPE '\'`, arg: "%lamp%"},
		{dialect: "postgres", keyword: "Lamp", condition: "title_search LIKE ?", arg: "%lamp%"},
		{dialect: "sqlite", keyword: "50%_off", condition: `title_search LIKE ? ESCAPE '\'`, arg: `%50\%\_off%`},
		{dialect: "sqlite", keyword: "ÉBÈNE", condition: `title_search LIKE ? ESCAPE '\'`, arg: "%ébène%"},
	}
	for _, tc := range cases {
		condition, arg := buildContainsConditionByDialect(tc.dialect, "title_search", tc.keyword)
		if condition != tc.condition {
			t.Fatalf("[%s] condition want %s got %s", tc.dialect, tc.condition, condition)
		}
		if arg != tc.arg {
			t.Fatalf("[%s] arg want %s got %s", tc.dialect, tc.arg, arg)
		}
	}
}

func TestDBDialectNameDefaultsToSQLite(t *testing.T) {
	if got := dbDialectName(nil); got != "sqlite" {
		t.Fatalf("dialect want sqlite got %s", got)
	}
}
