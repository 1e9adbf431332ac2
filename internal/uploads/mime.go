package uploads

import (
	"fmt"
	"sort"
	"strings"

	"github.com/agriportal/agriportal-backend/pkg/enums"
)

type mimeGroup string

const (
	mimeGroupImages mimeGroup = "images"
	mimeGroupPDFs   mimeGroup = "pdfs"
)

var mimeGroupNames = map[mimeGroup]string{
	mimeGroupImages: "images",
	mimeGroupPDFs:   "PDFs",
}

var mimeGroupTypes = map[mimeGroup][]string{
	mimeGroupImages: {"image/png", "image/jpeg", "image/webp", "image/gif"},
	mimeGroupPDFs:   {"application/pdf"},
}

var allowedMimeGroupsByKind = map[enums.UploadKind][]mimeGroup{
	enums.UploadKindIdentity: {mimeGroupImages, mimeGroupPDFs},
	enums.UploadKindQRCode:   {mimeGroupImages},
	enums.UploadKindProduct:  {mimeGroupImages},
	enums.UploadKindChat:     {mimeGroupImages},
}

var (
	mimeTypesByKind        = buildMimeTypesByKind()
	mimeDescriptionsByKind = buildMimeDescriptions()
)

func buildMimeTypesByKind() map[enums.UploadKind][]string {
	result := make(map[enums.UploadKind][]string, len(allowedMimeGroupsByKind))
	for kind, groups := range allowedMimeGroupsByKind {
		var list []string
		for _, group := range groups {
			list = append(list, mimeGroupTypes[group]...)
		}
		sort.Strings(list)
		result[kind] = list
	}
	return result
}

func buildMimeDescriptions() map[enums.UploadKind]string {
	result := make(map[enums.UploadKind]string, len(allowedMimeGroupsByKind))
	for kind, groups := range allowedMimeGroupsByKind {
		var descriptions []string
		for _, group := range groups {
			if name, ok := mimeGroupNames[group]; ok {
				descriptions = append(descriptions, name)
			}
		}
		result[kind] = humanReadableList(descriptions)
	}
	return result
}

func humanReadableList(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	case 2:
		return fmt.Sprintf("%s or %s", items[0], items[1])
	default:
		return fmt.Sprintf("%s, or %s", strings.Join(items[:len(items)-1], ", "), items[len(items)-1])
	}
}

func mimeAllowed(kind enums.UploadKind, mediaType string) bool {
	for _, candidate := range mimeTypesByKind[kind] {
		if candidate == mediaType {
			return true
		}
	}
	return false
}

func allowedMimeDescription(kind enums.UploadKind) string {
	if msg, ok := mimeDescriptionsByKind[kind]; ok && msg != "" {
		return msg
	}
	return "the approved file types"
}
