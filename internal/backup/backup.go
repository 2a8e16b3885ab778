// ABOUTME: Database dump and restore over any storage backend.
// ABOUTME: Dumps are canonical JSON, exclude credential settings, and can be passphrase-encrypted.
package backup

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/blopa/musclog-app-sub000/internal/crypto"
	"github.com/blopa/musclog-app-sub000/internal/models"
	"github.com/blopa/musclog-app-sub000/internal/storage"
)

// Dump serializes the whole store into a portable JSON document, optionally
// sealed with a passphrase. API-key settings never leave the device.
func Dump(ctx context.Context, repo storage.Repository, passphrase string) ([]byte, error) {
	data, err := repo.GetAllData(ctx)
	if err != nil {
		return nil, fmt.Errorf("dump: %w", err)
	}

	var kept []*models.Setting
	for _, s := range data.Settings {
		if models.IsSecretSetting(s.Type) {
			log.Debug("excluding secret setting from dump", "type", s.Type)
			continue
		}
		kept = append(kept, s)
	}
	data.Settings = kept

	doc, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("dump: encode: %w", err)
	}
	return crypto.EncryptBlob(doc, passphrase)
}

// Restore replaces the store's contents with a dump produced by Dump.
// Encrypted dumps need the passphrase they were sealed with; plaintext
// dumps restore as-is.
func Restore(ctx context.Context, repo storage.Repository, blob []byte, passphrase string) error {
	doc, err := crypto.DecryptBlob(blob, passphrase)
	if err != nil {
		return fmt.Errorf("restore: %w", err)
	}

	var data storage.ExportData
	if err := json.Unmarshal(doc, &data); err != nil {
		return fmt.Errorf("restore: parse dump: %w", err)
	}

	if err := repo.ImportData(ctx, &data); err != nil {
		return fmt.Errorf("restore: %w", err)
	}
	return nil
}
