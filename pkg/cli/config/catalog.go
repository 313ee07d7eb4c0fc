package config

import (
	"context"

	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/domain/model"
	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/service/catalog"
	"github.com/urfave/cli/v3"
)

// Catalog holds the locations of the reference catalogs
type Catalog struct {
	classification string
	matrix         string
	registry       string
}

// Flags returns CLI flags for catalog locations
func (c *Catalog) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "classification-catalog",
			Category:    "Catalog",
			Usage:       "Classification catalog JSON (local path or gs://bucket/object)",
			Required:    true,
			Sources:     cli.EnvVars("EXPORT_CONTROL_CLASSIFICATION_CATALOG"),
			Destination: &c.classification,
		},
		&cli.StringFlag{
			Name:        "control-matrix",
			Category:    "Catalog",
			Usage:       "Destination control matrix CSV (local path or gs://bucket/object)",
			Required:    true,
			Sources:     cli.EnvVars("EXPORT_CONTROL_CONTROL_MATRIX"),
			Destination: &c.matrix,
		},
		&cli.StringFlag{
			Name:        "restricted-party-registry",
			Category:    "Catalog",
			Usage:       "Restricted-party registry CSV (local path or gs://bucket/object)",
			Required:    true,
			Sources:     cli.EnvVars("EXPORT_CONTROL_RESTRICTED_PARTY_REGISTRY"),
			Destination: &c.registry,
		},
	}
}

// Sources returns the configured catalog sources
func (c *Catalog) Sources() catalog.Sources {
	return catalog.Sources{
		Classification: c.classification,
		Matrix:         c.matrix,
		Registry:       c.registry,
	}
}

// Configure loads the reference catalogs. A failure wraps model.ErrCatalogLoad.
func (c *Catalog) Configure(ctx context.Context) (*model.ReferenceData, error) {
	return catalog.New().Load(ctx, c.Sources())
}
