package document_test

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"strings"
	"testing"

	"peopledesk/internal/document"
	documenterrors "peopledesk/internal/document/errors"
	"peopledesk/internal/storage"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type fakeDocumentRepository struct {
	documents        map[string]*document.Document
	companyEmployees map[string]bool

	createFn func(ctx context.Context, d *document.Document) error
}

func newFakeDocumentRepository() *fakeDocumentRepository {
	return &fakeDocumentRepository{
		documents:        map[string]*document.Document{},
		companyEmployees: map[string]bool{},
	}
}

func (f *fakeDocumentRepository) WithTx(tx *sql.Tx) document.Repository { return f }

func (f *fakeDocumentRepository) Create(ctx context.Context, d *document.Document) error {
	if f.createFn != nil {
		if err := f.createFn(ctx, d); err != nil {
			return err
		}
	}
	cp := *d
	f.documents[d.ID.String()] = &cp
	return nil
}

func (f *fakeDocumentRepository) Delete(ctx context.Context, companyID, id string) error {
	delete(f.documents, id)
	return nil
}

func (f *fakeDocumentRepository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*document.Document, error) {
	if d, ok := f.documents[id]; ok && d.CompanyID.String() == companyID {
		cp := *d
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeDocumentRepository) FindAllByEmployee(ctx context.Context, companyID, employeeID string) ([]document.Document, error) {
	var out []document.Document
	for _, d := range f.documents {
		if d.CompanyID.String() == companyID && d.EmployeeID.String() == employeeID {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (f *fakeDocumentRepository) EmployeeBelongsToCompany(ctx context.Context, companyID, employeeID string) (bool, error) {
	return f.companyEmployees[companyID+"/"+employeeID], nil
}

type fakeDocumentStore struct {
	uploadErr error

	uploaded  []string
	destroyed []string
}

func (f *fakeDocumentStore) Upload(ctx context.Context, r io.Reader, folder, visibility string) (storage.UploadedObject, error) {
	if f.uploadErr != nil {
		return storage.UploadedObject{}, f.uploadErr
	}
	publicID := folder + "/obj-" + uuid.New().String()[:8]
	f.uploaded = append(f.uploaded, publicID)
	return storage.UploadedObject{
		PublicID:  publicID,
		SecureURL: "https://cdn.example.test/" + publicID,
		Bytes:     2048,
		Format:    "pdf",
	}, nil
}

func (f *fakeDocumentStore) Destroy(ctx context.Context, publicID string) error {
	f.destroyed = append(f.destroyed, publicID)
	return nil
}

func (f *fakeDocumentStore) DownloadURL(ctx context.Context, publicID, visibility string) (string, error) {
	return "https://cdn.example.test/signed/" + publicID, nil
}

type documentFixture struct {
	companyID  uuid.UUID
	actorID    uuid.UUID
	employeeID uuid.UUID
	repo       *fakeDocumentRepository
	store      *fakeDocumentStore
	svc        document.Service
}

func newDocumentFixture(t *testing.T) *documentFixture {
	t.Helper()

	fx := &documentFixture{
		companyID:  uuid.New(),
		actorID:    uuid.New(),
		employeeID: uuid.New(),
		repo:       newFakeDocumentRepository(),
		store:      &fakeDocumentStore{},
	}
	fx.repo.companyEmployees[fx.companyID.String()+"/"+fx.employeeID.String()] = true
	fx.svc = document.NewService(fx.repo, fx.store)
	return fx
}

func (fx *documentFixture) upload(t *testing.T, category string) document.DocumentResponse {
	t.Helper()
	resp, err := fx.svc.Upload(
		context.Background(),
		fx.companyID.String(),
		fx.actorID.String(),
		fx.employeeID.String(),
		category,
		"contract.pdf",
		strings.NewReader("%PDF-1.7"),
		storage.VisibilityPrivate,
	)
	assert.NoError(t, err)
	return resp
}

func TestDocumentService_Upload(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		fx := newDocumentFixture(t)

		resp := fx.upload(t, document.CategoryContract)

		assert.Equal(t, document.CategoryContract, resp.Category)
		assert.Equal(t, fx.employeeID.String(), resp.EmployeeID)
		assert.Equal(t, storage.VisibilityPrivate, resp.Visibility)
		assert.Len(t, fx.store.uploaded, 1)
		assert.Len(t, fx.repo.documents, 1)
	})

	t.Run("blank category defaults to other", func(t *testing.T) {
		fx := newDocumentFixture(t)

		resp := fx.upload(t, "")

		assert.Equal(t, document.CategoryOther, resp.Category)
	})

	t.Run("negative unknown category", func(t *testing.T) {
		fx := newDocumentFixture(t)

		_, err := fx.svc.Upload(
			context.Background(),
			fx.companyID.String(),
			fx.actorID.String(),
			fx.employeeID.String(),
			"RECEIPT",
			"receipt.pdf",
			strings.NewReader("%PDF-1.7"),
			storage.VisibilityPrivate,
		)

		assert.ErrorIs(t, err, documenterrors.ErrInvalidCategory)
		assert.Empty(t, fx.store.uploaded)
	})

	t.Run("negative employee outside the company", func(t *testing.T) {
		fx := newDocumentFixture(t)

		_, err := fx.svc.Upload(
			context.Background(),
			fx.companyID.String(),
			fx.actorID.String(),
			uuid.New().String(),
			document.CategoryContract,
			"contract.pdf",
			strings.NewReader("%PDF-1.7"),
			storage.VisibilityPrivate,
		)

		assert.ErrorIs(t, err, documenterrors.ErrEmployeeNotFound)
		assert.Empty(t, fx.store.uploaded)
	})

	t.Run("metadata failure removes the stored object", func(t *testing.T) {
		fx := newDocumentFixture(t)
		fx.repo.createFn = func(ctx context.Context, d *document.Document) error {
			return errors.New("insert failed")
		}

		_, err := fx.svc.Upload(
			context.Background(),
			fx.companyID.String(),
			fx.actorID.String(),
			fx.employeeID.String(),
			document.CategoryContract,
			"contract.pdf",
			strings.NewReader("%PDF-1.7"),
			storage.VisibilityPrivate,
		)

		assert.Error(t, err)
		assert.Equal(t, fx.store.uploaded, fx.store.destroyed)
		assert.Empty(t, fx.repo.documents)
	})

	t.Run("negative storage outage maps to upstream error", func(t *testing.T) {
		fx := newDocumentFixture(t)
		fx.store.uploadErr = errors.New("cloud unreachable")

		_, err := fx.svc.Upload(
			context.Background(),
			fx.companyID.String(),
			fx.actorID.String(),
			fx.employeeID.String(),
			document.CategoryContract,
			"contract.pdf",
			strings.NewReader("%PDF-1.7"),
			storage.VisibilityPrivate,
		)

		assert.ErrorIs(t, err, documenterrors.ErrStorageUpload)
	})
}

func TestDocumentService_ListAndDelete(t *testing.T) {
	t.Run("listing returns the employee's documents", func(t *testing.T) {
		fx := newDocumentFixture(t)
		fx.upload(t, document.CategoryContract)
		fx.upload(t, document.CategoryIdentity)

		docs, err := fx.svc.GetByEmployee(context.Background(), fx.companyID.String(), fx.employeeID.String())

		assert.NoError(t, err)
		assert.Len(t, docs, 2)
	})

	t.Run("delete removes metadata then storage", func(t *testing.T) {
		fx := newDocumentFixture(t)
		doc := fx.upload(t, document.CategoryContract)

		err := fx.svc.Delete(context.Background(), fx.companyID.String(), doc.ID)

		assert.NoError(t, err)
		assert.Empty(t, fx.repo.documents)
		assert.Len(t, fx.store.destroyed, 1)
	})

	t.Run("negative delete unknown document", func(t *testing.T) {
		fx := newDocumentFixture(t)

		err := fx.svc.Delete(context.Background(), fx.companyID.String(), uuid.New().String())

		assert.ErrorIs(t, err, documenterrors.ErrDocumentNotFound)
	})

	t.Run("download url is signed by the gateway", func(t *testing.T) {
		fx := newDocumentFixture(t)
		doc := fx.upload(t, document.CategoryContract)

		url, err := fx.svc.DownloadURL(context.Background(), fx.companyID.String(), doc.ID)

		assert.NoError(t, err)
		assert.Contains(t, url, "signed/")
	})
}
