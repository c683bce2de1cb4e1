package vault

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/vault/api"
	"go.uber.org/zap"

	"github.com/seu-repo/appinventor-skill/pkg/config"
)

// Secret paths under the configured KV v2 mount.
const (
	JWTSecretPath = "appinventor/jwt"
	DatabasePath  = "appinventor/database"
)

type SecretManager struct {
	kv  *api.KVv2
	log *zap.Logger
}

func NewSecretManager(cfg config.VaultConfig, log *zap.Logger) (*SecretManager, error) {
	vcfg := api.DefaultConfig()
	vcfg.Address = cfg.Address

	client, err := api.NewClient(vcfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create vault client: %w", err)
	}

	client.SetToken(cfg.Token)

	mount := cfg.Mount
	if mount == "" {
		mount = "secret"
	}

	return &SecretManager{kv: client.KVv2(mount), log: log}, nil
}

// Get reads one string field of a KV v2 secret.
func (sm *SecretManager) Get(ctx context.Context, path, field string) (string, error) {
	secret, err := sm.kv.Get(ctx, path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}

	value, ok := secret.Data[field].(string)
	if !ok || value == "" {
		return "", fmt.Errorf("secret %s has no field %q", path, field)
	}
	return value, nil
}

// Apply overrides the JWT secret and database URL with values stored in
// vault. Secrets that do not exist leave the configured values in place.
func (sm *SecretManager) Apply(ctx context.Context, cfg *config.Config) error {
	overrides := []struct {
		path, field string
		target      *string
	}{
		{JWTSecretPath, "secret", &cfg.JWT.Secret},
		{DatabasePath, "connection_string", &cfg.Database.URL},
	}

	for _, o := range overrides {
		value, err := sm.Get(ctx, o.path, o.field)
		if errors.Is(err, api.ErrSecretNotFound) {
			sm.log.Debug("Secret not found in vault, keeping configured value", zap.String("path", o.path))
			continue
		}
		if err != nil {
			return err
		}
		*o.target = value
		sm.log.Info("Loaded secret from vault", zap.String("path", o.path))
	}
	return nil
}
