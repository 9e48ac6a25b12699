package images

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input    string
		expected Format
		wantErr  bool
	}{
		{"jpeg", FormatJPEG, false},
		{"JPEG", FormatJPEG, false},
		{"jpg", FormatJPEG, false},
		{"Jpg", FormatJPEG, false},
		{"png", FormatPNG, false},
		{"PNG", FormatPNG, false},
		{" png ", FormatPNG, false},
		{"bmp", "", true},
		{"gif", "", true},
		{"webp", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			f, err := ParseFormat(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrUnsupportedFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, f)
		})
	}
}

func TestFormatFromContentType(t *testing.T) {
	f, err := FormatFromContentType("image/png")
	require.NoError(t, err)
	assert.Equal(t, FormatPNG, f)

	f, err = FormatFromContentType("image/jpeg; charset=binary")
	require.NoError(t, err)
	assert.Equal(t, FormatJPEG, f)

	for _, ct := range []string{"image/bmp", "text/plain", "", "image/"} {
		_, err := FormatFromContentType(ct)
		assert.ErrorIs(t, err, ErrUnsupportedFormat, ct)
	}
}

func TestFormatFromPath(t *testing.T) {
	f, err := FormatFromPath("/tmp/golf.PNG")
	require.NoError(t, err)
	assert.Equal(t, FormatPNG, f)

	f, err = FormatFromPath("frame-001.jpg")
	require.NoError(t, err)
	assert.Equal(t, FormatJPEG, f)

	_, err = FormatFromPath("frame-001.bmp")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestFormat_ContentType(t *testing.T) {
	assert.Equal(t, "image/jpeg", FormatJPEG.ContentType())
	assert.Equal(t, "image/png", FormatPNG.ContentType())
}
