package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/commhub/backend/internal/domain/communication"
	"github.com/commhub/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTemplate(t *testing.T, tenantID, name string, typ communication.TemplateType) *communication.Template {
	t.Helper()
	tpl, err := communication.NewTemplate(tenantID, "user-1", name, typ, "01FILEREF"+name, name+".docx",
		communication.NewPlaceholderSet("membershipNumber", "fullName"))
	require.NoError(t, err)
	return tpl
}

func TestGormTemplateRepository_SaveAndFind(t *testing.T) {
	repo := NewGormTemplateRepository(setupTestDB(t))
	ctx := context.Background()

	tpl := newTemplate(t, "tenant-a", "Welcome", communication.TemplateTypeLetter)
	desc := "Sent on join"
	require.NoError(t, tpl.ApplyPatch(communication.TemplatePatch{Description: &desc}))
	require.NoError(t, repo.Save(ctx, tpl))

	found, err := repo.FindByIDForTenant(ctx, "tenant-a", tpl.ID)
	require.NoError(t, err)
	assert.Equal(t, tpl.Name, found.Name)
	assert.Equal(t, "Sent on join", found.Description)
	assert.Equal(t, tpl.FileRef, found.FileRef)
	assert.Equal(t, "user-1", found.CreatedBy)
	assert.Equal(t, []string{"membershipNumber", "fullName"}, found.Placeholders.Names())

	t.Run("other tenant sees nothing", func(t *testing.T) {
		_, err := repo.FindByIDForTenant(ctx, "tenant-b", tpl.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("save updates in place", func(t *testing.T) {
		found.ReplaceContent("v2.docx", communication.NewPlaceholderSet("planName"))
		require.NoError(t, repo.Save(ctx, found))

		again, err := repo.FindByIDForTenant(ctx, "tenant-a", tpl.ID)
		require.NoError(t, err)
		assert.Equal(t, "v2.docx", again.FileName)
		assert.Equal(t, tpl.FileRef, again.FileRef)
		assert.Equal(t, []string{"planName"}, again.Placeholders.Names())

		count, err := repo.CountForTenant(ctx, "tenant-a", shared.Filter{})
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})
}

func TestGormTemplateRepository_FindAllForTenant(t *testing.T) {
	repo := NewGormTemplateRepository(setupTestDB(t))
	ctx := context.Background()

	for _, tpl := range []*communication.Template{
		newTemplate(t, "tenant-a", "Alpha notice", communication.TemplateTypeNotice),
		newTemplate(t, "tenant-a", "Beta letter", communication.TemplateTypeLetter),
		newTemplate(t, "tenant-a", "Gamma letter", communication.TemplateTypeLetter),
		newTemplate(t, "tenant-b", "Foreign letter", communication.TemplateTypeLetter),
	} {
		require.NoError(t, repo.Save(ctx, tpl))
	}

	filter := shared.Filter{}
	filter.OrderBy = "name"
	filter.OrderDir = "asc"
	all, err := repo.FindAllForTenant(ctx, "tenant-a", filter)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Alpha notice", all[0].Name)

	letters, err := repo.FindAllForTenant(ctx, "tenant-a", filter.Where("template_type", "LETTER"))
	require.NoError(t, err)
	assert.Len(t, letters, 2)

	search := shared.Filter{}
	search.Search = "GAMMA"
	found, err := repo.FindAllForTenant(ctx, "tenant-a", search)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Gamma letter", found[0].Name)

	paged := shared.Filter{}
	paged.PageSize = 2
	paged.Page = 2
	page2, err := repo.FindAllForTenant(ctx, "tenant-a", paged)
	require.NoError(t, err)
	assert.Len(t, page2, 1)

	injected := shared.Filter{}
	injected.OrderBy = "name; DROP TABLE communication_templates"
	_, err = repo.FindAllForTenant(ctx, "tenant-a", injected)
	require.NoError(t, err)
}

func TestGormTemplateRepository_DeleteForTenant(t *testing.T) {
	repo := NewGormTemplateRepository(setupTestDB(t))
	ctx := context.Background()
	tpl := newTemplate(t, "tenant-a", "Welcome", communication.TemplateTypeLetter)
	require.NoError(t, repo.Save(ctx, tpl))

	assert.ErrorIs(t, repo.DeleteForTenant(ctx, "tenant-b", tpl.ID), shared.ErrNotFound)
	_, err := repo.FindByIDForTenant(ctx, "tenant-a", tpl.ID)
	require.NoError(t, err, "other tenant's delete must not remove the row")

	require.NoError(t, repo.DeleteForTenant(ctx, "tenant-a", tpl.ID))
	_, err = repo.FindByIDForTenant(ctx, "tenant-a", tpl.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormTemplateRepository_DatabaseError(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewGormTemplateRepository(db)

	mock.ExpectQuery(`SELECT \* FROM "communication_templates" WHERE tenant_id = \$1 AND id = \$2`).
		WillReturnError(errors.New("connection reset"))

	_, err := repo.FindByIDForTenant(context.Background(), "tenant-a", "5f1b2c3d4e5f6a7b8c9d0e1f")
	require.Error(t, err)
	assert.NotErrorIs(t, err, shared.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormTemplateRepository_DeleteUsesTenantScope(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewGormTemplateRepository(db)

	mock.ExpectExec(`DELETE FROM "communication_templates" WHERE tenant_id = \$1 AND id = \$2`).
		WithArgs("tenant-a", "5f1b2c3d4e5f6a7b8c9d0e1f").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.DeleteForTenant(context.Background(), "tenant-a", "5f1b2c3d4e5f6a7b8c9d0e1f"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
