package docs

import (
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swaggo/swag"
)

var routerAnnotation = regexp.MustCompile(`(?m)^// @Router\s+(\S+)\s+\[(\w+)\]`)

func TestSwaggerDoc_CoversAnnotatedRoutes(t *testing.T) {
	raw, err := swag.ReadDoc(SwaggerInfo.InstanceName())
	require.NoError(t, err)

	var doc struct {
		Paths map[string]map[string]json.RawMessage `json:"paths"`
	}
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))

	files, err := filepath.Glob("../internal/handlers/*.go")
	require.NoError(t, err)

	seen := 0
	for _, file := range files {
		if strings.HasSuffix(file, "_test.go") {
			continue
		}
		src, err := os.ReadFile(file)
		require.NoError(t, err)
		for _, m := range routerAnnotation.FindAllStringSubmatch(string(src), -1) {
			seen++
			methods, ok := doc.Paths[m[1]]
			if assert.True(t, ok, "path %s from %s is not documented", m[1], filepath.Base(file)) {
				assert.Contains(t, methods, strings.ToLower(m[2]), "method %s %s", m[2], m[1])
			}
		}
	}
	assert.Positive(t, seen)
}

func TestSwaggerDoc_Info(t *testing.T) {
	raw, err := swag.ReadDoc(SwaggerInfo.InstanceName())
	require.NoError(t, err)
	assert.Contains(t, raw, `"title": "Road Safety Learning API"`)
	assert.Contains(t, raw, `"BearerAuth"`)
	assert.Contains(t, raw, `"#/definitions/models.CourseProgress"`)
}
