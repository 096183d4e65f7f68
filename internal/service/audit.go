package service

import (
	"github.com/courtside/courtside-backend/internal/domain"
	"github.com/rs/zerolog/log"
)

// recordAudit writes an audit entry, swallowing failures. The trail is
// best-effort: an audit write must never fail the operation it describes.
func recordAudit(repo domain.AuditRepository, entry *domain.AuditEntry) {
	if repo == nil {
		return
	}
	if err := repo.Create(entry); err != nil {
		log.Warn().
			Err(err).
			Int32("program_id", entry.ProgramID).
			Str("entity", entry.Entity).
			Int32("entity_id", entry.EntityID).
			Str("action", entry.Action).
			Msg("Failed to write audit entry")
	}
}
