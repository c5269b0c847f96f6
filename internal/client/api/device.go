package api

import (
	"context"
	"os"
	"runtime"
	"strings"

	"github.com/google/uuid"

	"github.com/lingopal/lingopal-client/internal/client/storage"
	"github.com/lingopal/lingopal-client/internal/common"
)

// hardwareID is a test seam for the platform probe.
var hardwareID = readHardwareID

// DeviceID resolves a best-effort device identifier: the platform hardware
// UUID when the OS exposes one, otherwise a per-install uuid persisted in
// general storage, otherwise the unknown-device sentinel.
func DeviceID(ctx context.Context, general storage.Backend) string {
	if id, err := hardwareID(); err == nil && id != "" {
		return id
	}

	stored, err := general.Get(ctx, storage.KeyDeviceID)
	if err == nil && stored != "" {
		return stored
	}

	generated := uuid.NewString()
	if err := general.Set(ctx, storage.KeyDeviceID, generated); err != nil {
		return common.UnknownDeviceID
	}
	return generated
}

// readHardwareID probes the platform for a stable hardware UUID. Only
// Linux is probed directly; other platforms fall through to the persisted
// per-install id.
func readHardwareID() (string, error) {
	if runtime.GOOS != "linux" {
		return "", os.ErrNotExist
	}
	out, err := os.ReadFile("/sys/class/dmi/id/product_uuid")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// SystemLocale returns the first system locale tag in BCP 47 form
// ("en-US"), falling back to the default locale when the environment gives
// nothing usable.
func SystemLocale() string {
	for _, name := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		raw := os.Getenv(name)
		if tag := normalizeLocale(raw); tag != "" {
			return tag
		}
	}
	return common.DefaultLocale
}

// normalizeLocale converts "en_US.UTF-8" style values into "en-US".
// "C" and "POSIX" are not real locales and are skipped.
func normalizeLocale(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "C" || raw == "POSIX" {
		return ""
	}
	if i := strings.IndexAny(raw, ".@"); i >= 0 {
		raw = raw[:i]
	}
	raw = strings.ReplaceAll(raw, "_", "-")
	parts := strings.SplitN(raw, "-", 2)
	if parts[0] == "" {
		return ""
	}
	tag := strings.ToLower(parts[0])
	if len(parts) == 2 && parts[1] != "" {
		tag += "-" + strings.ToUpper(parts[1])
	}
	return tag
}
