package testutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/yungbote/neurobridge-content/internal/domain"
)

func SeedLibrary(tb testing.TB, ctx context.Context, tx *gorm.DB) *types.Library {
	tb.Helper()
	lib := &types.Library{ID: uuid.New(), Title: "library"}
	if err := tx.WithContext(ctx).Create(lib).Error; err != nil {
		tb.Fatalf("seed library: %v", err)
	}
	return lib
}

func SeedDocument(tb testing.TB, ctx context.Context, tx *gorm.DB, libraryID uuid.UUID, body string) *types.Document {
	tb.Helper()
	doc := &types.Document{ID: uuid.New(), LibraryID: libraryID, Title: "doc", Body: body}
	if err := tx.WithContext(ctx).Create(doc).Error; err != nil {
		tb.Fatalf("seed document: %v", err)
	}
	return doc
}

func SeedSection(tb testing.TB, ctx context.Context, tx *gorm.DB) *types.CourseSection {
	tb.Helper()
	sec := &types.CourseSection{ID: uuid.New(), Title: "section"}
	if err := tx.WithContext(ctx).Create(sec).Error; err != nil {
		tb.Fatalf("seed section: %v", err)
	}
	return sec
}

func SeedTemplate(tb testing.TB, ctx context.Context, tx *gorm.DB, schemaJSON string) *types.Template {
	tb.Helper()
	tpl := &types.Template{
		ID:              uuid.New(),
		Name:            "template",
		SchemaVersion:   1,
		InputSchema:     datatypes.JSON([]byte(schemaJSON)),
		GeneratedSource: "export default function Card() {}",
		SampleData:      datatypes.JSON([]byte(`{}`)),
		Dependencies:    datatypes.JSON([]byte(`[]`)),
		ToolList:        datatypes.JSON([]byte(`[]`)),
	}
	if err := tx.WithContext(ctx).Create(tpl).Error; err != nil {
		tb.Fatalf("seed template: %v", err)
	}
	return tpl
}
