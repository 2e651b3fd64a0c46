package storage

import (
	"context"
	"io"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"go.uber.org/zap"
)

type cloudinaryGateway struct {
	cld    *cloudinary.Cloudinary
	logger *zap.Logger
}

// NewCloudinaryGateway wires the object storage boundary to Cloudinary.
func NewCloudinaryGateway(cloudName, apiKey, apiSecret string, logger ...*zap.Logger) (Gateway, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, err
	}

	l := zap.L().Named("storage.cloudinary")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("storage.cloudinary")
	}
	return &cloudinaryGateway{cld: cld, logger: l}, nil
}

func (g *cloudinaryGateway) Upload(ctx context.Context, r io.Reader, folder string, visibility string) (UploadedObject, error) {
	params := uploader.UploadParams{Folder: folder}

	resp, err := g.cld.Upload.Upload(ctx, r, params)
	if err != nil {
		g.logger.Error("upload failed", zap.String("folder", folder), zap.Error(err))
		return UploadedObject{}, err
	}

	g.logger.Info("object uploaded",
		zap.String("public_id", resp.PublicID),
		zap.String("folder", folder),
		zap.String("visibility", visibility),
	)

	return UploadedObject{
		PublicID:  resp.PublicID,
		SecureURL: resp.SecureURL,
		Bytes:     resp.Bytes,
		Format:    resp.Format,
	}, nil
}

func (g *cloudinaryGateway) Destroy(ctx context.Context, publicID string) error {
	_, err := g.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		g.logger.Error("destroy failed", zap.String("public_id", publicID), zap.Error(err))
	}
	return err
}

func (g *cloudinaryGateway) DownloadURL(ctx context.Context, publicID string, visibility string) (string, error) {
	asset, err := g.cld.Image(publicID)
	if err != nil {
		return "", err
	}
	return asset.String()
}
