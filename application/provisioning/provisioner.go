// Package provisioning ensures the bucket and tables exist before the
// service accepts traffic.
package provisioning

import (
	"context"
	"fmt"
	"strings"

	"ahkneemay/application/ports"
	"ahkneemay/domain/core/entities"
	pkgerrors "ahkneemay/pkg/errors"

	"go.uber.org/zap"
)

// DefaultRegion is used when no region is configured
const DefaultRegion = "eu-west-1"

// Resources are the names resolved by provisioning. A value is created once
// at startup and never modified.
type Resources struct {
	Region     string `json:"region"`
	BucketName string `json:"bucketName"`
	BucketURL  string `json:"bucketURL"`
	UserTable  string `json:"userTable"`
	AnimeTable string `json:"animeTable"`
}

// Provisioner creates the bucket and tables for a name prefix
type Provisioner struct {
	items  ports.ItemStore
	blobs  ports.BlobStore
	region string
	logger *zap.Logger
}

// NewProvisioner creates a provisioner for stores bound to region
func NewProvisioner(items ports.ItemStore, blobs ports.BlobStore, region string, logger *zap.Logger) *Provisioner {
	if region == "" {
		region = DefaultRegion
	}
	return &Provisioner{
		items:  items,
		blobs:  blobs,
		region: region,
		logger: logger,
	}
}

// UserTableSpec is the key schema of the users table
func UserTableSpec(prefix string) ports.TableSpec {
	return ports.TableSpec{
		Name:      prefix + "_users",
		KeySchema: ports.KeySchema{HashKey: entities.AttrUsername},
	}
}

// AnimeTableSpec is the key schema of the anime table
func AnimeTableSpec(prefix string) ports.TableSpec {
	return ports.TableSpec{
		Name:      prefix + "_animes",
		KeySchema: ports.KeySchema{HashKey: entities.AttrTitle, RangeKey: entities.AttrOwner},
	}
}

// WebsiteURL is the public URL of a bucket's static website endpoint
func WebsiteURL(bucket, region string) string {
	return fmt.Sprintf("http://%s.s3-website-%s.amazonaws.com/", bucket, region)
}

// Provision ensures the bucket, then the users table, then the anime table.
// Existing resources count as success, so running it again is safe. The
// first other error aborts and nothing created so far is removed.
func (p *Provisioner) Provision(ctx context.Context, prefix string) (*Resources, error) {
	if strings.TrimSpace(prefix) == "" {
		return nil, pkgerrors.NewValidationError("name prefix is required")
	}

	bucket := strings.ToLower(prefix)
	bucketURL, err := p.ensureBucket(ctx, bucket)
	if err != nil {
		return nil, err
	}

	userTable, err := p.ensureTable(ctx, UserTableSpec(prefix))
	if err != nil {
		return nil, err
	}

	animeTable, err := p.ensureTable(ctx, AnimeTableSpec(prefix))
	if err != nil {
		return nil, err
	}

	resources := &Resources{
		Region:     p.region,
		BucketName: bucket,
		BucketURL:  bucketURL,
		UserTable:  userTable,
		AnimeTable: animeTable,
	}

	p.logger.Info("Provisioning complete",
		zap.String("bucket", resources.BucketName),
		zap.String("bucketURL", resources.BucketURL),
		zap.String("userTable", resources.UserTable),
		zap.String("animeTable", resources.AnimeTable),
	)

	return resources, nil
}

func (p *Provisioner) ensureBucket(ctx context.Context, bucket string) (string, error) {
	location, err := p.blobs.CreateBucket(ctx, bucket)
	if err != nil {
		if !pkgerrors.IsConflict(err) {
			p.logger.Error("Failed to create bucket", zap.String("bucket", bucket), zap.Error(err))
			return "", err
		}
		p.logger.Info("Bucket already exists", zap.String("bucket", bucket))
		location = ""
	}

	if location != "" {
		return location, nil
	}
	return WebsiteURL(bucket, p.region), nil
}

func (p *Provisioner) ensureTable(ctx context.Context, spec ports.TableSpec) (string, error) {
	name, err := p.items.CreateTable(ctx, spec)
	if err != nil {
		if !pkgerrors.IsConflict(err) {
			p.logger.Error("Failed to create table", zap.String("table", spec.Name), zap.Error(err))
			return "", err
		}
		p.logger.Info("Table already exists", zap.String("table", spec.Name))
		name = ""
	}

	if name == "" {
		return spec.Name, nil
	}
	return name, nil
}
