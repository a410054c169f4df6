package service

import (
	"bytes"
	"testing"

	"github.com/lshigami/formkit/internal/model"
)

func TestPutAndGetImage(t *testing.T) {
	env := newTestEnv(t)
	form := env.form(t, "Images")
	section := env.defaultSection(t, form.ID)

	resp, err := env.images.PutImage(ctx, model.ImageKindSection, section, pngBytes, "")
	if err != nil {
		t.Fatalf("PutImage: %v", err)
	}
	if resp.ContentType != "image/png" || resp.URL != ImageURL(model.ImageKindSection, section) {
		t.Errorf("unexpected response %+v", resp)
	}

	data, ct, err := env.images.GetImage(ctx, model.ImageKindSection, section)
	if err != nil {
		t.Fatalf("GetImage: %v", err)
	}
	if !bytes.Equal(data, pngBytes) || ct != "image/png" {
		t.Errorf("GetImage returned %d bytes of %q", len(data), ct)
	}

	got, err := env.sections.GetSection(ctx, section)
	if err != nil || got.ImageURL == nil {
		t.Errorf("section does not expose its image: %+v %v", got, err)
	}
}

func TestPutImageErrors(t *testing.T) {
	env := newTestEnv(t)
	form := env.form(t, "BadImages")

	_, err := env.images.PutImage(ctx, model.ImageKindQuestion, 404, pngBytes, "")
	wantCode(t, err, ErrorNotFound)

	_, err = env.images.PutImage(ctx, model.ImageKindForm, form.ID, []byte("plain text"), "")
	wantCode(t, err, ErrorInvalidInput)

	_, err = env.images.PutImage(ctx, model.ImageKindForm, form.ID, nil, "image/png")
	wantCode(t, err, ErrorInvalidInput)

	big := append(append([]byte{}, pngBytes...), make([]byte, 2<<20)...)
	_, err = env.images.PutImage(ctx, model.ImageKindForm, form.ID, big, "")
	wantCode(t, err, ErrorInvalidInput)

	_, _, err = env.images.GetImage(ctx, model.ImageKindForm, form.ID)
	wantCode(t, err, ErrorNotFound)
}
