// Package dbstrings holds the naming conventions that map Go type and field
// names onto table and column names: snake_case, PascalCase, and English
// pluralization of the last word of a name.
package dbstrings

import (
	"strings"
	"unicode"
)

// ToPascalCase converts a snake_case string to PascalCase.
// Examples:
//
//	"user_id" -> "UserId"
//	"author" -> "Author"
//	"created_at" -> "CreatedAt"
func ToPascalCase(s string) string {
	parts := strings.Split(s, "_")
	for i, part := range parts {
		if len(part) > 0 {
			parts[i] = strings.ToUpper(part[:1]) + part[1:]
		}
	}
	return strings.Join(parts, "")
}

// ToSnakeCase converts a PascalCase or camelCase string to snake_case.
// Runs of capitals are treated as one word.
// Examples:
//
//	"UserID" -> "user_id"
//	"CreatedAt" -> "created_at"
//	"HTTPServer" -> "http_server"
func ToSnakeCase(s string) string {
	runes := []rune(s)
	var result strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && wordBoundary(runes, i) {
				result.WriteRune('_')
			}
			result.WriteRune(unicode.ToLower(r))
			continue
		}
		result.WriteRune(r)
	}
	return result.String()
}

// wordBoundary reports whether the upper-case rune at i starts a new word.
func wordBoundary(runes []rune, i int) bool {
	prev := runes[i-1]
	if prev == '_' {
		return false
	}
	if unicode.IsLower(prev) || unicode.IsDigit(prev) {
		return true
	}
	// "HTTPServer": the S starts a word because a lower-case rune follows it.
	return i+1 < len(runes) && unicode.IsLower(runes[i+1])
}

var irregularPlurals = map[string]string{
	"child":  "children",
	"person": "people",
	"man":    "men",
	"woman":  "women",
	"tooth":  "teeth",
	"foot":   "feet",
	"goose":  "geese",
	"mouse":  "mice",
	"index":  "indices",
	"matrix": "matrices",
	"vertex": "vertices",
	"quiz":   "quizzes",
}

// ToPlural converts a singular English word to its plural form.
// Examples:
//
//	"user" -> "users"
//	"category" -> "categories"
//	"address" -> "addresses"
//	"child" -> "children"
func ToPlural(s string) string {
	if plural, ok := irregularPlurals[strings.ToLower(s)]; ok {
		if len(s) > 0 && unicode.IsUpper(rune(s[0])) {
			return strings.ToUpper(plural[:1]) + plural[1:]
		}
		return plural
	}

	if strings.HasSuffix(s, "y") && len(s) > 1 && !isVowel(s[len(s)-2]) {
		return s[:len(s)-1] + "ies"
	}
	if strings.HasSuffix(s, "s") || strings.HasSuffix(s, "x") ||
		strings.HasSuffix(s, "ch") || strings.HasSuffix(s, "sh") {
		return s + "es"
	}
	return s + "s"
}

func isVowel(c byte) bool {
	switch c {
	case 'a', 'e', 'i', 'o', 'u':
		return true
	}
	return false
}

// ToTableName converts an entity name to its default table name: the snake_case
// form with only the last word pluralized.
// Examples:
//
//	"User" -> "users"
//	"OrderItem" -> "order_items"
//	"SalesPerson" -> "sales_people"
func ToTableName(entityName string) string {
	snake := ToSnakeCase(entityName)
	idx := strings.LastIndex(snake, "_")
	return snake[:idx+1] + ToPlural(snake[idx+1:])
}

// ToColumnName converts a field name to its default column name.
func ToColumnName(fieldName string) string {
	return ToSnakeCase(fieldName)
}

// ToForeignKey returns the column a child table uses to point at the owner
// entity: "User" -> "user_id", "BlogPost" -> "blog_post_id".
func ToForeignKey(ownerName string) string {
	return ToSnakeCase(ownerName) + "_id"
}

// ToForeignKeyField returns the field a child entity is expected to declare for
// a belongs-to relation named name: "author" -> "AuthorId".
func ToForeignKeyField(relationName string) string {
	return ToPascalCase(ToSnakeCase(relationName)) + "Id"
}
