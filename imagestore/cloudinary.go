// Package imagestore hosts avatar binaries with an external image CDN.
package imagestore

import (
	"context"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/goliatone/go-errors"

	auth "github.com/soukhq/souk-auth"
)

// Cloudinary stores images in a Cloudinary account
type Cloudinary struct {
	client *cloudinary.Cloudinary
}

var _ auth.ImageStore = (*Cloudinary)(nil)

// NewCloudinary builds a store from a cloudinary:// credential URL
func NewCloudinary(credentialURL string) (*Cloudinary, error) {
	client, err := cloudinary.NewFromURL(credentialURL)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryOperation, "failed to initialize image store")
	}
	return &Cloudinary{client: client}, nil
}

// Upload stores a data URI payload under the given folder and returns the
// public identifier and serving URL.
func (c *Cloudinary) Upload(ctx context.Context, data string, folder string) (*auth.Image, error) {
	resp, err := c.client.Upload.Upload(ctx, data, uploader.UploadParams{
		Folder: folder,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryOperation, "image upload failed")
	}

	return &auth.Image{
		ID:  resp.PublicID,
		URL: resp.SecureURL,
	}, nil
}

// Delete removes a stored image by its public identifier
func (c *Cloudinary) Delete(ctx context.Context, id string) error {
	_, err := c.client.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID: id,
	})
	if err != nil {
		return errors.Wrap(err, errors.CategoryOperation, "image delete failed")
	}
	return nil
}
