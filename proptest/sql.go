package proptest

// commonColumns repeat often enough that generated queries regularly bind the
// same column twice.
var commonColumns = []string{"id", "name", "age", "email", "user_id", "created_at", "score"}

// Column returns a common column name or a random identifier.
func Column(g *Generator) string {
	if g.Bool() {
		return Pick(g, commonColumns...)
	}
	return g.Identifier(12)
}

// QualifiedColumn returns a column, sometimes prefixed with a table name as
// in "users.id".
func QualifiedColumn(g *Generator) string {
	if g.Prob(0.3) {
		return g.Identifier(8) + "." + Column(g)
	}
	return Column(g)
}

// Operator returns a comparison operator.
func Operator(g *Generator) string {
	return Pick(g, "=", "<>", "<", "<=", ">", ">=", "LIKE")
}

// Boolean returns "AND" or "OR".
func Boolean(g *Generator) string {
	return Pick(g, "AND", "OR")
}

// Table returns a table name.
func Table(g *Generator) string {
	return g.Identifier(16)
}
