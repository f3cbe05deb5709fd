package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, query string) (*Result, error) {
	t.Helper()
	return Run(context.Background(), query, Config{Filename: "test.cyq"})
}

func TestRunEmptyQuery(t *testing.T) {
	res, err := run(t, "   ;  ")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty")
	assert.Nil(t, res)
}

func TestRunSimpleMatchReturn(t *testing.T) {
	res, err := run(t, "MATCH (a:Person) RETURN a.name")
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, 2, len(res.Handle.Root().Single[0].Clauses))
}

func TestRunRejectsUndeclaredReference(t *testing.T) {
	_, err := run(t, "MATCH (a:Person) RETURN b")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not defined")
}

func TestRunRejectsTrailingClauseAfterReturn(t *testing.T) {
	_, err := run(t, "MATCH (a) RETURN a MATCH (b) RETURN b")
	require.Error(t, err)
}

func TestRunRejectsMissingWithAfterOptionalMatch(t *testing.T) {
	_, err := run(t, "OPTIONAL MATCH (a) MATCH (b) RETURN a,b")
	require.Error(t, err)
}

func TestRunRejectsMissingWithBetweenUpdateAndRead(t *testing.T) {
	_, err := run(t, "CREATE (a) MATCH (b) RETURN a,b")
	require.Error(t, err)
}

func TestRunCreateStandaloneRedeclareRejected(t *testing.T) {
	_, err := run(t, "MATCH (a) CREATE (a) RETURN a")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "conflicts with an existing declaration")
}

func TestRunCreateAnchorReuseAllowed(t *testing.T) {
	_, err := run(t, "MATCH (a) CREATE (a)-[:KNOWS]->(b) RETURN a,b")
	require.NoError(t, err)
}

func TestRunCreateAnchorWithNewLabelsRejected(t *testing.T) {
	_, err := run(t, "MATCH (a) CREATE (a:Person)-[:KNOWS]->(b) RETURN a,b")
	require.Error(t, err)
}

func TestRunCreateSiblingCannotSeeNewBinding(t *testing.T) {
	_, err := run(t, "CREATE (a {v: 1}),(b {v: a.v+1})")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not defined")
}

func TestRunUnwindThenMatchReuseAsNodeRejected(t *testing.T) {
	_, err := run(t, "UNWIND [1,2,3] AS a MATCH (a) RETURN a")
	require.Error(t, err)
}

func TestRunSameAliasNodeAndRelationship(t *testing.T) {
	_, err := run(t, "MATCH (a)-[a]->(b) RETURN a,b")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "node and a relationship")
}

func TestRunUnionRequiresMatchingColumns(t *testing.T) {
	_, err := run(t, "MATCH (a) RETURN a.name UNION MATCH (b) RETURN b.name, b.age")
	require.Error(t, err)
}

func TestRunUnionCannotMixAllAndPlain(t *testing.T) {
	_, err := run(t, "MATCH (a) RETURN a.name UNION MATCH (b) RETURN b.name UNION ALL MATCH (c) RETURN c.name")
	require.Error(t, err)
}

func TestRunCallSubqueryImportListRejectsOuterReference(t *testing.T) {
	_, err := run(t, "MATCH (a) CALL { WITH a.name AS n RETURN n } RETURN a")
	require.Error(t, err)
}

func TestRunCallSubqueryImportListAllowsPlainIdentifier(t *testing.T) {
	_, err := run(t, "MATCH (a) CALL { WITH a MATCH (a)-[:KNOWS]->(b) RETURN b } RETURN a")
	require.NoError(t, err)
}

func TestRunStarExpandsDeterministically(t *testing.T) {
	res, err := run(t, "MATCH (a)-[r]->(b) RETURN *")
	require.NoError(t, err)
	require.NotNil(t, res)
	clauses := res.Handle.Root().Single[0].Clauses
	assert.GreaterOrEqual(t, res.RewritePasses, 1)
	assert.Equal(t, 2, len(clauses))
}

func TestRunRejectsInvertedVarLengthRange(t *testing.T) {
	_, err := run(t, "MATCH (a)-[*5..2]->(b) RETURN a,b")
	require.Error(t, err)
}

func TestRunStripsCypherParameterHeader(t *testing.T) {
	res, err := run(t, `CYPHER {limit: 5} MATCH (a) RETURN a LIMIT $limit`)
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, int64(5), res.Params["limit"])
}

func TestRunReturnOrderByCanReferenceProjectedAlias(t *testing.T) {
	_, err := run(t, "MATCH (a) RETURN a.name AS n ORDER BY n")
	require.NoError(t, err)
}

func TestRunWithOrderByCanReferenceProjectedAlias(t *testing.T) {
	_, err := run(t, "MATCH (a) WITH a.name AS n ORDER BY n RETURN n")
	require.NoError(t, err)
}

func TestRunWithOrderByCannotReferencePreProjectionName(t *testing.T) {
	_, err := run(t, "MATCH (a) WITH a.name AS n ORDER BY a.age RETURN n")
	require.Error(t, err)
}

func TestRunRepeatedRunsAgreeOnRewritePasses(t *testing.T) {
	res1, err1 := run(t, "MATCH (a) WITH a MATCH (a)-[:KNOWS]->(b) RETURN a,b")
	require.NoError(t, err1)
	res2, err2 := run(t, "MATCH (a) WITH a MATCH (a)-[:KNOWS]->(b) RETURN a,b")
	require.NoError(t, err2)
	assert.Equal(t, res1.RewritePasses, res2.RewritePasses)
}
