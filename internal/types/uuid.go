package types

import (
	"fmt"
	"strings"
	"sync"

	"github.com/oklog/ulid/v2"
	"github.com/teris-io/shortid"
)

// GenerateUUID returns a k-sortable unique identifier
func GenerateUUID() string {
	return ulid.Make().String()
}

// GenerateUUIDWithPrefix returns a k-sortable unique identifier
// with a prefix ex inv_01HZX3ZK8B9V6Q7R2M4N5P6T7W
func GenerateUUIDWithPrefix(prefix string) string {
	if prefix == "" {
		return GenerateUUID()
	}
	return fmt.Sprintf("%s_%s", prefix, GenerateUUID())
}

var (
	sidGenerator *shortid.Shortid
	once         sync.Once
)

func initializeSID() {
	var err error
	sidGenerator, err = shortid.New(1, shortid.DefaultABC, 2342)
	if err != nil {
		panic("failed to initialize shortid generator: " + err.Error())
	}
}

// GenerateShortIDWithPrefix returns an upper-cased short ID with a prefix,
// capped at 12 characters, e.g. `CN-XYZ12A8Q`.
func GenerateShortIDWithPrefix(prefix string) string {
	once.Do(initializeSID)

	id, err := sidGenerator.Generate()
	if err != nil {
		return ""
	}
	id = strings.ReplaceAll(id, "-", "")
	id = strings.ReplaceAll(id, "_", "")

	availableLen := 12 - len(prefix)
	if availableLen <= 0 {
		return ""
	}
	if len(id) > availableLen {
		id = id[:availableLen]
	}

	return strings.ToUpper(prefix + id)
}

const (
	UUID_PREFIX_LEASE                = "lease"
	UUID_PREFIX_BILLING_SETTINGS     = "bs"
	UUID_PREFIX_CHARGE               = "chg"
	UUID_PREFIX_INVOICE              = "inv"
	UUID_PREFIX_INVOICE_LINE         = "inv_line"
	UUID_PREFIX_INVOICE_RUN          = "run"
	UUID_PREFIX_PAYMENT              = "pay"
	UUID_PREFIX_PAYMENT_HISTORY      = "pay_hist"
	UUID_PREFIX_PAYMENT_CONFIRMATION = "pcr"
	UUID_PREFIX_CREDIT_NOTE          = "cn"
	UUID_PREFIX_EVENT                = "evt"
)

const (
	SHORT_ID_PREFIX_CREDIT_NOTE = "CN-"
)
