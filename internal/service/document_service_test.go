package service_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"billaudit/internal/audit"
	"billaudit/internal/config"
	"billaudit/internal/domain"
	"billaudit/internal/port"
	"billaudit/internal/report"
	"billaudit/internal/service"
	"billaudit/mocks"
)

const (
	compliantAnalysis = "Invoice #INV-2024-001 from Acme Corp, Total: $500.00, Date: 01/15/2024"
	overLimitAnalysis = "Invoice #INV-2024-002 from Acme Corp, Total: $15,000.00, Date: 01/15/2024"
	wineAnalysis      = compliantAnalysis + ". Items: wine"
)

func testConfig() *config.Config {
	return &config.Config{
		S3: config.S3Config{
			Bucket:        "test-bucket",
			KeyPrefix:     "documents",
			PresignExpiry: time.Hour,
		},
		Upload: config.UploadConfig{
			MaxFileSizeMB:     1,
			AllowedExtensions: []string{"pdf", "png", "jpg", "jpeg"},
			HashSecret:        "test-secret",
		},
		Persist: config.PersistConfig{MaxRetries: 3},
	}
}

// pngContent returns minimal PNG bytes (magic bytes).
func pngContent() []byte {
	header := []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}
	return append(header, bytes.Repeat([]byte{0x00}, 100)...)
}

type uploadFixture struct {
	docRepo  *mocks.MockDocumentRepo
	policies *mocks.MockAuditPolicyRepo
	storage  *mocks.MockObjectStorage
	analyzer *mocks.MockDocumentAnalyzer
	svc      service.DocumentService
}

func newUploadFixture(cfg *config.Config) *uploadFixture {
	f := &uploadFixture{
		docRepo:  new(mocks.MockDocumentRepo),
		policies: new(mocks.MockAuditPolicyRepo),
		storage:  new(mocks.MockObjectStorage),
		analyzer: new(mocks.MockDocumentAnalyzer),
	}
	auditor := audit.NewAuditor(f.policies, nil, nil)
	f.svc = service.NewDocumentService(f.docRepo, f.storage, f.analyzer, auditor, cfg)
	return f
}

// expectPipeline stubs a new (non-duplicate) document through storage and analysis.
func (f *uploadFixture) expectPipeline(analysis string) {
	f.docRepo.On("GetByHash", mock.Anything, mock.AnythingOfType("string")).
		Return(nil, domain.ErrDocumentNotFound).Once()
	f.storage.On("Put", mock.Anything, mock.AnythingOfType("port.PutObjectInput")).
		Return(&port.StoredObject{Key: "k", URL: "https://test-bucket.s3.amazonaws.com/k"}, nil)
	f.analyzer.On("Analyze", mock.Anything, mock.AnythingOfType("port.AnalyzeInput")).
		Return(&port.AnalyzeOutput{Text: analysis, ModelUsed: "vision"}, nil)
	f.policies.On("ListActive", mock.Anything).Return(audit.DefaultPolicies(), nil)
}

func upload(name string, data []byte) service.UploadInput {
	return service.UploadInput{Filename: name, Size: int64(len(data)), File: bytes.NewReader(data)}
}

func TestDocumentService_Upload_CompliantImage(t *testing.T) {
	f := newUploadFixture(testConfig())
	f.expectPipeline(compliantAnalysis)
	f.docRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Document")).Return(nil)

	result, err := f.svc.Upload(context.Background(), upload("Receipt March.png", pngContent()))

	require.NoError(t, err)
	assert.False(t, result.IsDuplicate)
	doc := result.Document
	assert.Equal(t, domain.FileTypeImage, doc.FileType)
	assert.Len(t, doc.FileHash, 64)
	assert.Equal(t, "documents/"+doc.ID.String()+"/Receipt_March.png", doc.StorageKey)
	assert.Equal(t, "https://test-bucket.s3.amazonaws.com/k", doc.StorageURL)
	assert.Equal(t, compliantAnalysis, doc.AnalysisText)
	require.NotNil(t, doc.AuditResult)
	assert.True(t, doc.AuditResult.IsCompliant)
	assert.Equal(t, 100.0, doc.AuditResult.ComplianceScore)
	require.NotNil(t, doc.FormatValid)
	assert.False(t, *doc.FormatValid, "format verdict is advisory")

	f.analyzer.AssertCalled(t, "Analyze", mock.Anything, mock.MatchedBy(func(in port.AnalyzeInput) bool {
		return in.FileType == domain.FileTypeImage && in.ContentType == "image/png"
	}))
	f.storage.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestDocumentService_Upload_HashIsStableForSameContent(t *testing.T) {
	var hashes []string
	for i := 0; i < 2; i++ {
		f := newUploadFixture(testConfig())
		f.expectPipeline(compliantAnalysis)
		f.docRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Document")).Return(nil)

		result, err := f.svc.Upload(context.Background(), upload("a.png", pngContent()))
		require.NoError(t, err)
		hashes = append(hashes, result.Document.FileHash)
	}
	assert.Equal(t, hashes[0], hashes[1])
}

func TestDocumentService_Upload_WarningOnlyIsStored(t *testing.T) {
	f := newUploadFixture(testConfig())
	f.expectPipeline(wineAnalysis)
	f.docRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Document")).Return(nil)

	result, err := f.svc.Upload(context.Background(), upload("bar-tab.jpg", pngContent()))

	require.NoError(t, err)
	require.NotNil(t, result.Document.AuditResult)
	assert.False(t, result.Document.AuditResult.IsCompliant)
	assert.Equal(t, 100.0, result.Document.AuditResult.ComplianceScore)
}

func TestDocumentService_Upload_RejectsBlockingViolations(t *testing.T) {
	f := newUploadFixture(testConfig())
	f.expectPipeline(overLimitAnalysis)
	f.storage.On("Delete", mock.Anything, mock.AnythingOfType("string")).Return(nil)

	result, err := f.svc.Upload(context.Background(), upload("big.png", pngContent()))

	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrComplianceRejected)
	var ce *domain.ComplianceError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, 1, ce.Blocking)
	assert.Equal(t, "Document rejected: 1 policy violations found. Document must be compliant to upload.", ce.Error())
	f.storage.AssertNumberOfCalls(t, "Delete", 1)
	f.docRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestDocumentService_Upload_Duplicate(t *testing.T) {
	f := newUploadFixture(testConfig())
	existing := &domain.Document{ID: uuid.New(), OriginalFilename: "first.png"}
	f.docRepo.On("GetByHash", mock.Anything, mock.AnythingOfType("string")).Return(existing, nil)

	result, err := f.svc.Upload(context.Background(), upload("second.png", pngContent()))

	require.NoError(t, err)
	assert.True(t, result.IsDuplicate)
	assert.Equal(t, existing, result.Document)
	f.storage.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
	f.analyzer.AssertNotCalled(t, "Analyze", mock.Anything, mock.Anything)
}

func TestDocumentService_Upload_HashLookupErrorIsNotFatal(t *testing.T) {
	f := newUploadFixture(testConfig())
	f.docRepo.On("GetByHash", mock.Anything, mock.AnythingOfType("string")).
		Return(nil, errors.New("connection reset")).Once()
	f.expectPipeline(compliantAnalysis)
	f.docRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Document")).Return(nil)

	result, err := f.svc.Upload(context.Background(), upload("a.png", pngContent()))

	require.NoError(t, err)
	assert.False(t, result.IsDuplicate)
}

func TestDocumentService_Upload_TooLarge(t *testing.T) {
	f := newUploadFixture(testConfig())

	_, err := f.svc.Upload(context.Background(), service.UploadInput{
		Filename: "huge.png",
		Size:     2 * 1024 * 1024,
		File:     bytes.NewReader(nil),
	})
	assert.ErrorIs(t, err, domain.ErrFileTooLarge)

	// a body larger than the declared size is still capped
	big := bytes.Repeat([]byte{0x01}, 1024*1024+1)
	_, err = f.svc.Upload(context.Background(), service.UploadInput{
		Filename: "liar.png",
		Size:     10,
		File:     bytes.NewReader(big),
	})
	assert.ErrorIs(t, err, domain.ErrFileTooLarge)
	f.docRepo.AssertNotCalled(t, "GetByHash", mock.Anything, mock.Anything)
}

func TestDocumentService_Upload_RejectsBadInput(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		data     []byte
		wantErr  error
	}{
		{"unsupported extension", "notes.docx", []byte("hello"), domain.ErrUnsupportedFileType},
		{"known but not allowed", "scan.tiff", pngContent(), domain.ErrUnsupportedFileType},
		{"no extension", "README", []byte("hello"), domain.ErrUnsupportedFileType},
		{"empty file", "empty.png", nil, domain.ErrEmptyFile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newUploadFixture(testConfig())
			_, err := f.svc.Upload(context.Background(), upload(tt.filename, tt.data))
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestDocumentService_Upload_PDFWithoutTextIsUnprocessable(t *testing.T) {
	f := newUploadFixture(testConfig())
	f.docRepo.On("GetByHash", mock.Anything, mock.AnythingOfType("string")).Return(nil, domain.ErrDocumentNotFound)

	_, err := f.svc.Upload(context.Background(), upload("scan.pdf", []byte("%PDF-1.4 not really a pdf")))

	assert.ErrorIs(t, err, domain.ErrUnprocessableFile)
	f.storage.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
}

func TestDocumentService_Upload_AnalysisFailureCleansUp(t *testing.T) {
	f := newUploadFixture(testConfig())
	f.docRepo.On("GetByHash", mock.Anything, mock.AnythingOfType("string")).Return(nil, domain.ErrDocumentNotFound)
	f.storage.On("Put", mock.Anything, mock.AnythingOfType("port.PutObjectInput")).
		Return(&port.StoredObject{Key: "k", URL: "u"}, nil)
	f.storage.On("Delete", mock.Anything, mock.AnythingOfType("string")).Return(nil)
	f.analyzer.On("Analyze", mock.Anything, mock.AnythingOfType("port.AnalyzeInput")).
		Return(nil, errors.New("model unavailable"))

	_, err := f.svc.Upload(context.Background(), upload("a.png", pngContent()))

	assert.ErrorIs(t, err, domain.ErrAnalysisFailed)
	assert.Contains(t, err.Error(), "model unavailable")
	f.storage.AssertNumberOfCalls(t, "Delete", 1)
	f.docRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestDocumentService_Upload_StorageFailure(t *testing.T) {
	f := newUploadFixture(testConfig())
	f.docRepo.On("GetByHash", mock.Anything, mock.AnythingOfType("string")).Return(nil, domain.ErrDocumentNotFound)
	f.storage.On("Put", mock.Anything, mock.AnythingOfType("port.PutObjectInput")).
		Return(nil, errors.New("bucket missing"))
	f.analyzer.On("Analyze", mock.Anything, mock.AnythingOfType("port.AnalyzeInput")).
		Return(&port.AnalyzeOutput{Text: compliantAnalysis}, nil)

	_, err := f.svc.Upload(context.Background(), upload("a.png", pngContent()))

	assert.ErrorIs(t, err, domain.ErrUploadFailed)
	f.storage.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestDocumentService_Upload_PersistRetries(t *testing.T) {
	f := newUploadFixture(testConfig())
	f.expectPipeline(compliantAnalysis)
	f.docRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Document")).
		Return(errors.New("deadlock detected")).Twice()
	f.docRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Document")).Return(nil).Once()

	result, err := f.svc.Upload(context.Background(), upload("a.png", pngContent()))

	require.NoError(t, err)
	assert.NotNil(t, result.Document)
	f.docRepo.AssertNumberOfCalls(t, "Create", 3)
}

func TestDocumentService_Upload_PersistGivesUp(t *testing.T) {
	f := newUploadFixture(testConfig())
	f.expectPipeline(compliantAnalysis)
	f.docRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Document")).
		Return(errors.New("database down"))

	_, err := f.svc.Upload(context.Background(), upload("a.png", pngContent()))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 3 attempts")
	f.docRepo.AssertNumberOfCalls(t, "Create", 3)
}

func TestDocumentService_Upload_PersistRetryHonorsContext(t *testing.T) {
	cfg := testConfig()
	cfg.Persist.RetryDelay = time.Hour
	f := newUploadFixture(cfg)
	f.expectPipeline(compliantAnalysis)

	ctx, cancel := context.WithCancel(context.Background())
	f.docRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Document")).
		Run(func(mock.Arguments) { cancel() }).
		Return(errors.New("database down"))

	_, err := f.svc.Upload(ctx, upload("a.png", pngContent()))

	assert.ErrorIs(t, err, context.Canceled)
	f.docRepo.AssertNumberOfCalls(t, "Create", 1)
}

func TestDocumentService_Upload_DuplicateDetectedAtInsert(t *testing.T) {
	f := newUploadFixture(testConfig())
	f.expectPipeline(compliantAnalysis)
	winner := &domain.Document{ID: uuid.New(), OriginalFilename: "winner.png"}
	f.docRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Document")).Return(domain.ErrDuplicateDocument)
	f.docRepo.On("GetByHash", mock.Anything, mock.AnythingOfType("string")).Return(winner, nil)
	f.storage.On("Delete", mock.Anything, mock.AnythingOfType("string")).Return(nil)

	result, err := f.svc.Upload(context.Background(), upload("loser.png", pngContent()))

	require.NoError(t, err)
	assert.True(t, result.IsDuplicate)
	assert.Equal(t, winner.ID, result.Document.ID)
	f.docRepo.AssertNumberOfCalls(t, "Create", 1)
	f.storage.AssertCalled(t, "Delete", mock.Anything, mock.MatchedBy(func(key string) bool {
		return strings.HasPrefix(key, "documents/") && strings.HasSuffix(key, "/loser.png")
	}))
}

func TestDocumentService_DownloadURL(t *testing.T) {
	f := newUploadFixture(testConfig())
	docID := uuid.New()
	f.docRepo.On("GetByID", mock.Anything, docID).
		Return(&domain.Document{ID: docID, StorageKey: "documents/x/a.png"}, nil)
	f.storage.On("PresignGet", mock.Anything, "documents/x/a.png", time.Hour).
		Return("https://signed.example/a.png", nil)

	url, err := f.svc.DownloadURL(context.Background(), docID)

	require.NoError(t, err)
	assert.Equal(t, "https://signed.example/a.png", url)
}

func TestDocumentService_DownloadURL_NotFound(t *testing.T) {
	f := newUploadFixture(testConfig())
	docID := uuid.New()
	f.docRepo.On("GetByID", mock.Anything, docID).Return(nil, domain.ErrDocumentNotFound)

	_, err := f.svc.DownloadURL(context.Background(), docID)

	assert.ErrorIs(t, err, domain.ErrDocumentNotFound)
	f.storage.AssertNotCalled(t, "PresignGet", mock.Anything, mock.Anything, mock.Anything)
}

func TestDocumentService_Export_CSV(t *testing.T) {
	f := newUploadFixture(testConfig())
	docs := []domain.Document{
		{ID: uuid.New(), OriginalFilename: "one.png", FileType: domain.FileTypeImage, AnalysisText: compliantAnalysis},
		{ID: uuid.New(), OriginalFilename: "two.pdf", FileType: domain.FileTypeText},
	}
	f.docRepo.On("List", mock.Anything, 0, 500).Return(docs, 2, nil)

	var buf bytes.Buffer
	err := f.svc.Export(context.Background(), &buf, report.FormatCSV)

	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "one.png")
	assert.Contains(t, out, "two.pdf")
	assert.Contains(t, out, "Acme Corp")
	f.docRepo.AssertNumberOfCalls(t, "List", 1)
}

func TestDocumentService_Export_ListError(t *testing.T) {
	f := newUploadFixture(testConfig())
	f.docRepo.On("List", mock.Anything, 0, 500).Return(nil, 0, errors.New("boom"))

	err := f.svc.Export(context.Background(), &bytes.Buffer{}, report.FormatCSV)

	assert.Error(t, err)
}
