package gormfilter

import (
	"strings"

	"github.com/samber/lo"
)

var acronyms = map[string]bool{
	"id":   true,
	"uid":  true,
	"uuid": true,
	"url":  true,
	"uri":  true,
	"api":  true,
	"http": true,
	"ip":   true,
	"os":   true,
	"sku":  true,
	"utm":  true,
	"json": true,
	"html": true,
	"db":   true,
}

// SmartPascalCase turns a dimension name such as "userId" or "created_at" into the Go
// field name gorm knows it by, upper-casing common acronyms: "UserID", "CreatedAt".
func SmartPascalCase(s string) string {
	var b strings.Builder
	for _, word := range lo.Words(s) {
		lower := strings.ToLower(word)
		if acronyms[lower] {
			b.WriteString(strings.ToUpper(lower))
			continue
		}
		b.WriteString(lo.Capitalize(lower))
	}
	return b.String()
}
