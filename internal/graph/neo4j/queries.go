package neo4j

import (
	"fmt"

	"github.com/JakeFAU/recipe-graph-crawler/internal/recipe"
)

// Labels, property keys and relationship types cannot be Cypher parameters.
// Callers validate them against the fixed vocabulary before formatting.

var existsByIDQuery = fmt.Sprintf(
	"MATCH (n) WHERE n.%[1]s = $id RETURN n.%[1]s AS id LIMIT 1",
	recipe.IDProperty,
)

func existsByPropertyQuery(label, property string) string {
	return fmt.Sprintf(
		"MATCH (n:%s) WHERE n.%s = $value RETURN n.%s AS id LIMIT 1",
		label, property, recipe.IDProperty,
	)
}

func upsertNodeQuery(label string) string {
	return fmt.Sprintf("MERGE (n:%s {%s: $id}) SET n += $props", label, recipe.IDProperty)
}

func upsertRelationshipQuery(relType string) string {
	return fmt.Sprintf(
		"MATCH (source {%[1]s: $source}) MATCH (target {%[1]s: $target}) MERGE (source)-[:%[2]s]->(target)",
		recipe.IDProperty, relType,
	)
}

func indexQueries(dialect Dialect) []string {
	var queries []string
	for _, kind := range recipe.Kinds() {
		queries = append(queries, indexQuery(dialect, kind.Label(), recipe.IDProperty))
	}
	return append(queries, indexQuery(dialect, recipe.KindRecipe.Label(), "url"))
}

func indexQuery(dialect Dialect, label, property string) string {
	if dialect == DialectMemgraph {
		return fmt.Sprintf("CREATE INDEX ON :%s(%s);", label, property)
	}
	return fmt.Sprintf(
		"CREATE INDEX %s_%s IF NOT EXISTS FOR (n:%s) ON (n.%s)",
		label, property, label, property,
	)
}
