package publisher

import (
	"context"
	"errors"

	"clipmerge/internal/job"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// uploadAPI is the subset of the Cloudinary upload client used here.
type uploadAPI interface {
	Upload(ctx context.Context, file interface{}, params uploader.UploadParams) (*uploader.UploadResult, error)
}

// Cloudinary publishes artifacts as Cloudinary video resources.
type Cloudinary struct {
	upload uploadAPI
}

// NewCloudinary configures a client from a cloudinary:// URL of the form
// cloudinary://<api_key>:<api_secret>@<cloud_name>.
func NewCloudinary(cloudinaryURL string) (*Cloudinary, error) {
	if cloudinaryURL == "" {
		return nil, errors.New("CLOUDINARY_URL is required for the cloudinary backend")
	}
	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, err
	}
	return &Cloudinary{upload: &cld.Upload}, nil
}

// Name returns the backend label.
func (c *Cloudinary) Name() string {
	return BackendCloudinary
}

// Publish uploads localPath with overwrite enabled.
func (c *Cloudinary) Publish(ctx context.Context, localPath, publicID string) (Result, error) {
	resp, err := c.upload.Upload(ctx, localPath, uploader.UploadParams{
		PublicID:     publicID,
		ResourceType: "video",
		Overwrite:    api.Bool(true),
	})
	if err != nil {
		return Result{}, job.PublishError(err)
	}
	if resp == nil {
		return Result{}, publishError("empty response from cloudinary")
	}
	if resp.Error.Message != "" {
		return Result{}, publishError("cloudinary: %s", resp.Error.Message)
	}
	if resp.SecureURL == "" {
		return Result{}, publishError("cloudinary returned no URL for %s", publicID)
	}

	id := resp.PublicID
	if id == "" {
		id = publicID
	}
	return Result{PublicID: id, SecureURL: resp.SecureURL}, nil
}
