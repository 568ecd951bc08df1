package gate

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	util "github.com/sportx-platform/access-gateway/pkg/util"
)

// OwnerKeyHeader carries the platform-control key.
const OwnerKeyHeader = "X-Owner-Key"

// OwnerGate secures the hidden owner/platform-control surface with a
// header-borne key checked against a bcrypt hash. The surface answers 404 to
// anything that fails the check, so it stays indistinguishable from a
// nonexistent route.
type OwnerGate struct {
	keyHash []byte
	logger  *zap.Logger
}

// NewOwnerGate builds the gate. An empty hash disables the surface entirely
// (fail closed).
func NewOwnerGate(keyHash string, logger *zap.Logger) *OwnerGate {
	return &OwnerGate{keyHash: []byte(keyHash), logger: logger}
}

// Handle admits the request only when the header key matches the hash.
func (g *OwnerGate) Handle(c *fiber.Ctx) error {
	if len(g.keyHash) == 0 {
		g.logger.Warn("owner surface requested without OWNER_PANEL_KEY_HASH configured")
		return util.NewNotFound("page", nil)
	}

	key := c.Get(OwnerKeyHeader)
	if key == "" {
		return util.NewNotFound("page", nil)
	}
	if err := bcrypt.CompareHashAndPassword(g.keyHash, []byte(key)); err != nil {
		g.logger.Warn("owner key rejected", zap.String("ip", c.IP()))
		return util.NewNotFound("page", nil)
	}
	return c.Next()
}
