package uploads

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agriportal/agriportal-backend/pkg/config"
	pkgerrors "github.com/agriportal/agriportal-backend/pkg/errors"
)

var (
	pngBytes = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), make([]byte, 32)...)
	pdfBytes = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n%%EOF\n")
)

func newTestService(t *testing.T, maxMB int) (Service, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := NewDiskStore(dir)
	require.NoError(t, err)
	svc, err := NewService(config.UploadsConfig{Dir: dir, PublicPath: "uploads/", MaxUploadMB: maxMB}, store, nil)
	require.NoError(t, err)
	return svc, dir
}

func TestSaveImage(t *testing.T) {
	svc, dir := newTestService(t, 1)

	stored, err := svc.Save(context.Background(), "product", bytes.NewReader(pngBytes))
	require.NoError(t, err)
	assert.Equal(t, "image/png", stored.ContentType)
	assert.True(t, strings.HasSuffix(stored.Filename, ".png"))
	assert.Equal(t, "/uploads/"+stored.Filename, stored.URL)

	onDisk, err := os.ReadFile(filepath.Join(dir, stored.Filename))
	require.NoError(t, err)
	assert.Equal(t, pngBytes, onDisk)
}

func TestSavePDFOnlyForIdentity(t *testing.T) {
	svc, _ := newTestService(t, 1)
	ctx := context.Background()

	stored, err := svc.Save(ctx, "identity", bytes.NewReader(pdfBytes))
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", stored.ContentType)

	_, err = svc.Save(ctx, "qr", bytes.NewReader(pdfBytes))
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation), "got %v", err)
}

func TestSaveRejects(t *testing.T) {
	svc, _ := newTestService(t, 1)
	ctx := context.Background()

	_, err := svc.Save(ctx, "avatar", bytes.NewReader(pngBytes))
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	_, err = svc.Save(ctx, "product", strings.NewReader("just some text"))
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	_, err = svc.Save(ctx, "product", bytes.NewReader(nil))
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	big := append(append([]byte{}, pngBytes...), make([]byte, 1<<20)...)
	_, err = svc.Save(ctx, "product", bytes.NewReader(big))
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeTooLarge))
}

func TestHumanReadableList(t *testing.T) {
	assert.Equal(t, "images", humanReadableList([]string{"images"}))
	assert.Equal(t, "images or PDFs", humanReadableList([]string{"images", "PDFs"}))
	assert.Equal(t, "a, b, or c", humanReadableList([]string{"a", "b", "c"}))
	assert.Equal(t, "images or PDFs", allowedMimeDescription("identity"))
}
