package bootstrap

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	appconfig "github.com/wolfman30/mastry-api/internal/config"
	"github.com/wolfman30/mastry-api/internal/docstore"
	"github.com/wolfman30/mastry-api/pkg/logging"
)

// NeedsAWS reports whether the configured store or email provider talks to AWS.
func NeedsAWS(cfg *appconfig.Config) bool {
	if cfg == nil {
		return false
	}
	return docstore.Scheme(cfg.DatabaseURL) == "dynamodb" || cfg.EmailProvider == providerSES
}

// BuildStore opens the document store named by DATABASE_URL. It returns nil
// when no database is configured or the connection fails; the API still
// starts and reports the state on /test.
func BuildStore(ctx context.Context, cfg *appconfig.Config, awsCfg *aws.Config, logger *logging.Logger) docstore.Store {
	if cfg == nil || !cfg.DatabaseURLSet() {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	opts := docstore.OpenOptions{DatabaseName: cfg.DatabaseName}
	scheme := docstore.Scheme(cfg.DatabaseURL)
	if scheme == "dynamodb" && awsCfg != nil {
		opts.Dynamo = dynamodb.NewFromConfig(*awsCfg)
	}

	store, err := docstore.Open(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		logger.Error("document store not available", "error", err, "scheme", scheme)
		return nil
	}
	logger.Info("document store connected", "backend", store.Backend(), "database", store.Name())
	return docstore.WithTracing(store)
}
