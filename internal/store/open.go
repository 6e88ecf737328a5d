package store

import (
	"github.com/rs/zerolog"

	"github.com/mrz1836/dcrvault/internal/config"
	"github.com/mrz1836/dcrvault/internal/vaultcrypto"
	vaulterr "github.com/mrz1836/dcrvault/pkg/errors"
)

// Open builds the Store selected by cfg.Storage. A passphrase is required
// when cfg.Storage.Encrypt is set.
func Open(cfg *config.Config, passphrase *vaultcrypto.SecureBytes, logger *zerolog.Logger) (*Store, error) {
	if cfg.Storage.Encrypt && (passphrase == nil || passphrase.Len() == 0) {
		return nil, vaulterr.WithSuggestion(vaulterr.ErrInvalidInput,
			"storage encryption is enabled; set "+cfg.Storage.PassphraseEnv+" or enter a passphrase")
	}
	if !cfg.Storage.Encrypt {
		passphrase = nil
	}

	path, err := config.ExpandHome(cfg.StorePath())
	if err != nil {
		return nil, err
	}

	var backend Backend
	switch cfg.Storage.Driver {
	case config.StoreBadger:
		b, openErr := OpenBadger(path)
		if openErr != nil {
			return nil, openErr
		}
		backend = b
	case config.StoreFile, "":
		backend = NewFileBackend(path)
	default:
		return nil, vaulterr.WithDetails(vaulterr.ErrConfigInvalid, map[string]string{
			"storage.driver": cfg.Storage.Driver,
		})
	}

	if logger != nil {
		logger.Debug().Str("driver", cfg.Storage.Driver).Str("path", path).Bool("sealed", passphrase != nil).Msg("opening store")
	}
	return New(backend, Options{Passphrase: passphrase, Logger: logger}), nil
}
