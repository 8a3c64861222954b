package app

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"

	"tripplanner/internal/gateway/config"
	artifactrepo "tripplanner/internal/gateway/repository/artifact"
)

type gatewayStores struct {
	plans  artifactrepo.Store
	origin string
	db     *sql.DB
}

func (s *gatewayStores) close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// initStores picks the plan archive backend: S3 when fully configured,
// then Postgres when a DSN is set, else memory. All are fronted by the
// LRU cache.
func initStores(ctx context.Context, cfg *config.Config, log *zap.Logger) (*gatewayStores, error) {
	stores := &gatewayStores{}
	var origin artifactrepo.Store
	switch {
	case cfg.Artifact.CanUseS3():
		s3Store, err := newS3Store(cfg)
		if err != nil {
			return nil, err
		}
		log.Info("plan store: s3", zap.String("bucket", cfg.Artifact.Bucket), zap.String("endpoint", cfg.Artifact.Endpoint))
		origin, stores.origin = s3Store, "s3"
	case strings.TrimSpace(cfg.PlanStoreDSN) != "":
		if cfg.Artifact.Enabled {
			log.Warn("plan store: s3 config incomplete, using postgres")
		}
		db, err := openPostgres(ctx, cfg.PlanStoreDSN)
		if err != nil {
			return nil, err
		}
		log.Info("plan store: postgres")
		origin, stores.origin, stores.db = artifactrepo.NewPostgresStore(db), "postgres", db
	default:
		if cfg.Artifact.Enabled {
			log.Warn("plan store: s3 config incomplete, using in-memory fallback")
		}
		log.Info("plan store: in-memory")
		origin, stores.origin = artifactrepo.NewMemoryStore(), "in-memory"
	}
	stores.plans = artifactrepo.NewCachedStore(origin, artifactrepo.DefaultCacheConfig())
	return stores, nil
}

func newS3Store(cfg *config.Config) (artifactrepo.Store, error) {
	s3Store, err := artifactrepo.NewS3Store(artifactrepo.S3Config{
		Endpoint:  cfg.Artifact.Endpoint,
		Region:    cfg.Artifact.Region,
		AccessKey: cfg.Artifact.AccessKey,
		SecretKey: cfg.Artifact.SecretKey,
		Bucket:    cfg.Artifact.Bucket,
		UseSSL:    cfg.Artifact.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize plan s3 store: %w", err)
	}
	return s3Store, nil
}

func openPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to reach db: %w", err)
	}
	return db, nil
}
