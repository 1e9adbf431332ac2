package uploads

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/agriportal/agriportal-backend/pkg/config"
	"github.com/agriportal/agriportal-backend/pkg/enums"
	pkgerrors "github.com/agriportal/agriportal-backend/pkg/errors"
	"github.com/agriportal/agriportal-backend/pkg/logger"
)

// Stored describes an accepted upload.
type Stored struct {
	Filename    string `json:"filename"`
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

// Service accepts user files for registrations, listings and chat.
type Service interface {
	Save(ctx context.Context, kind string, r io.Reader) (*Stored, error)
	MaxBytes() int64
}

type service struct {
	store      Store
	publicPath string
	maxBytes   int64
	logg       *logger.Logger
}

// NewService wires the uploads service.
func NewService(cfg config.UploadsConfig, store Store, logg *logger.Logger) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("upload store required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	public := "/" + strings.Trim(cfg.PublicPath, "/")
	return &service{store: store, publicPath: public, maxBytes: cfg.MaxBytes(), logg: logg}, nil
}

func (s *service) MaxBytes() int64 { return s.maxBytes }

// Save sniffs the content, enforces the size ceiling and the per-kind type
// list, then stores the file under a random name.
func (s *service) Save(ctx context.Context, kind string, r io.Reader) (*Stored, error) {
	uploadKind, err := enums.ParseUploadKind(kind)
	if err != nil {
		return nil, pkgerrors.InvalidInput("kind must be identity, qr, product or chat")
	}
	if r == nil {
		return nil, pkgerrors.InvalidInput("file is required")
	}

	data, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read upload")
	}
	if int64(len(data)) > s.maxBytes {
		return nil, pkgerrors.New(pkgerrors.CodeTooLarge, "file exceeds the upload size limit").
			WithDetails(map[string]any{"max_bytes": s.maxBytes})
	}
	if len(data) == 0 {
		return nil, pkgerrors.InvalidInput("file is empty")
	}

	detected := mimetype.Detect(data)
	mediaType := strings.ToLower(strings.SplitN(detected.String(), ";", 2)[0])
	if !mimeAllowed(uploadKind, mediaType) {
		return nil, pkgerrors.InvalidInput(fmt.Sprintf("%s uploads must be %s", uploadKind, allowedMimeDescription(uploadKind))).
			WithDetails(map[string]any{"content_type": mediaType})
	}

	name := uuid.NewString() + detected.Extension()
	if err := s.store.Put(ctx, name, data); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store upload")
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"upload_kind":  uploadKind,
		"content_type": mediaType,
		"size":         len(data),
	}), "upload.stored")

	return &Stored{
		Filename:    name,
		URL:         path.Join(s.publicPath, name),
		ContentType: mediaType,
		Size:        int64(len(data)),
	}, nil
}
