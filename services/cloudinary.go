package services

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// CloudinaryService uploads banner images to the hosted object store
// and hands back their public URLs.
type CloudinaryService struct {
	cld *cloudinary.Cloudinary
}

var Cloudinary *CloudinaryService

func InitializeCloudinary(cloudinaryURL string) error {
	if cloudinaryURL == "" {
		return fmt.Errorf("cloudinary URL is required")
	}

	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return fmt.Errorf("failed to initialize Cloudinary: %w", err)
	}

	Cloudinary = &CloudinaryService{cld: cld}
	return nil
}

// UploadImageFromBytes stores one image under the given folder with a
// unique public ID and returns the upload result with HTTPS URLs.
func (cs *CloudinaryService) UploadImageFromBytes(ctx context.Context, data []byte, folder, filename string) (*uploader.UploadResult, error) {
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	publicID := fmt.Sprintf("%s/%s_%d", folder, sanitizeName(base), time.Now().UnixNano())

	boolPtr := func(b bool) *bool { return &b }
	result, err := cs.cld.Upload.Upload(ctx, bytes.NewReader(data), uploader.UploadParams{
		PublicID:       publicID,
		Folder:         folder,
		UseFilename:    boolPtr(true),
		UniqueFilename: boolPtr(true),
		Overwrite:      boolPtr(false),
		ResourceType:   "image",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload image: %w", err)
	}

	// Normalize URLs to HTTPS to avoid mixed-content blocking
	if result != nil {
		if result.URL != "" {
			result.URL = forceHTTPS(result.URL)
		}
		if result.SecureURL != "" {
			result.SecureURL = forceHTTPS(result.SecureURL)
		} else if result.URL != "" {
			result.SecureURL = result.URL
		}
	}

	return result, nil
}

// DeleteImage removes an uploaded image by public ID.
func (cs *CloudinaryService) DeleteImage(ctx context.Context, publicID string) error {
	_, err := cs.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     publicID,
		ResourceType: "image",
	})
	if err != nil {
		return fmt.Errorf("failed to delete image: %w", err)
	}
	return nil
}

// ExtractPublicID pulls the public ID out of a Cloudinary delivery
// URL, e.g. https://res.cloudinary.com/acct/image/upload/v123/folder/name.jpg
// yields "folder/name".
func ExtractPublicID(url string) string {
	parts := strings.Split(url, "/")
	for i, part := range parts {
		if part == "upload" && i+1 < len(parts) {
			path := strings.Join(parts[i+1:], "/")
			// Drop the version prefix (v1234567890/)
			if pathParts := strings.SplitN(path, "/", 2); len(pathParts) == 2 && strings.HasPrefix(pathParts[0], "v") {
				path = pathParts[1]
			}
			return strings.TrimSuffix(path, filepath.Ext(path))
		}
	}
	return ""
}

// sanitizeName keeps uploaded filenames to a safe character set.
func sanitizeName(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '.':
			return r
		default:
			return '_'
		}
	}, name)
}

// forceHTTPS ensures Cloudinary URLs use the https scheme.
func forceHTTPS(in string) string {
	if in == "" {
		return in
	}
	out := strings.TrimSpace(in)
	return strings.Replace(out, "http://", "https://", 1)
}
