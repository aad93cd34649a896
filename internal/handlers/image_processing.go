package handlers

import (
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/webp"
)

type imageInfo struct {
	Format string
	Width  int
	Height int
}

// inspectImage reads only the image header.
func inspectImage(imagePath string) (imageInfo, error) {
	file, err := os.Open(imagePath)
	if err != nil {
		return imageInfo{}, err
	}
	defer file.Close()

	cfg, format, err := image.DecodeConfig(file)
	if err != nil {
		return imageInfo{}, err
	}

	return imageInfo{Format: format, Width: cfg.Width, Height: cfg.Height}, nil
}
