package model

import "fmt"

// ImageKind names the entity an uploaded image belongs to.
type ImageKind string

const (
	ImageKindForm     ImageKind = "form"
	ImageKindSection  ImageKind = "section"
	ImageKindQuestion ImageKind = "question"
	ImageKindOption   ImageKind = "option"
)

func ParseImageKind(s string) (ImageKind, bool) {
	switch k := ImageKind(s); k {
	case ImageKindForm, ImageKindSection, ImageKindQuestion, ImageKindOption:
		return k, true
	}
	return "", false
}

// ImageKey is the storage key of an entity image.
func ImageKey(kind ImageKind, id uint) string {
	return fmt.Sprintf("%s/%d", kind, id)
}
