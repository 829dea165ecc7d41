package loader

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/ridoystarlord/fixturegen/schema"
)

// TagLoader loads models from Go structs carrying fixture tags
type TagLoader struct {
	modelsDir string
}

// NewTagLoader creates a new tag loader
func NewTagLoader(modelsDir string) *TagLoader {
	return &TagLoader{
		modelsDir: modelsDir,
	}
}

// LoadModelsFromTags loads models from the Go sources under modelsDir
func LoadModelsFromTags(modelsDir string) ([]schema.Model, error) {
	loader := NewTagLoader(modelsDir)
	return loader.Load()
}

// Load parses every .go file (tests excluded) under the models directory.
// A struct is a model when at least one of its fields has a fixture tag;
// its untagged exported fields are then included with an inferred type.
func (tl *TagLoader) Load() ([]schema.Model, error) {
	if _, err := os.Stat(tl.modelsDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("models directory '%s' does not exist. Run 'fixturegen init' first", tl.modelsDir)
	}

	var models []schema.Model
	err := filepath.Walk(tl.modelsDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}

		fileModels, err := tl.parseGoFile(path)
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}
		models = append(models, fileModels...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load models: %w", err)
	}
	return models, nil
}

func (tl *TagLoader) parseGoFile(filePath string) ([]schema.Model, error) {
	fset := token.NewFileSet()
	node, err := parser.ParseFile(fset, filePath, nil, parser.ParseComments)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Go file: %w", err)
	}

	var (
		models   []schema.Model
		parseErr error
	)
	ast.Inspect(node, func(n ast.Node) bool {
		if parseErr != nil {
			return false
		}
		spec, ok := n.(*ast.TypeSpec)
		if !ok {
			return true
		}
		structType, ok := spec.Type.(*ast.StructType)
		if !ok || !hasFixtureTag(structType) {
			return true
		}
		model, err := tl.parseStruct(spec.Name.Name, structType)
		if err != nil {
			parseErr = err
			return false
		}
		models = append(models, model)
		return true
	})
	return models, parseErr
}

func (tl *TagLoader) parseStruct(structName string, structType *ast.StructType) (schema.Model, error) {
	model := schema.Model{
		Name:  structName,
		Table: schema.TableNameFor(structName),
	}
	for _, field := range structType.Fields.List {
		if len(field.Names) == 0 {
			continue // embedded
		}
		goType := tl.getFieldType(field.Type)
		tag := fixtureTag(field.Tag)
		for _, name := range field.Names {
			if !ast.IsExported(name.Name) {
				continue
			}
			f, skip, err := schema.ParseTag(name.Name, goType, tag)
			if err != nil {
				return schema.Model{}, fmt.Errorf("%s.%s: %w", structName, name.Name, err)
			}
			if !skip {
				model.Fields = append(model.Fields, f)
			}
		}
	}
	return model, nil
}

func hasFixtureTag(structType *ast.StructType) bool {
	for _, field := range structType.Fields.List {
		if fixtureTag(field.Tag) != "" {
			return true
		}
	}
	return false
}

func fixtureTag(tag *ast.BasicLit) string {
	if tag == nil {
		return ""
	}
	return reflect.StructTag(strings.Trim(tag.Value, "`")).Get(schema.TagKey)
}

// getFieldType renders the Go type as written, for type inference
func (tl *TagLoader) getFieldType(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.Ident:
		return t.Name
	case *ast.StarExpr:
		return tl.getFieldType(t.X)
	case *ast.ArrayType:
		return "[]" + tl.getFieldType(t.Elt)
	case *ast.SelectorExpr:
		if x, ok := t.X.(*ast.Ident); ok {
			return x.Name + "." + t.Sel.Name
		}
	}
	return ""
}
