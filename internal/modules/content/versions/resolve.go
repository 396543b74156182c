package versions

import (
	"github.com/google/uuid"

	"github.com/yungbote/neurobridge-content/internal/platform/dbctx"
)

// Resolution is what a bound activity renders against.
type Resolution struct {
	TemplateID       uuid.UUID `json:"template_id"`
	Fields           Fields    `json:"fields"`
	ServedVersion    int       `json:"served_version"`
	BoundVersion     int       `json:"bound_version"`
	LatestVersion    int       `json:"latest_version"`
	UpgradeAvailable bool      `json:"upgrade_available"`
	// SnapshotMissing marks the degraded path: the bound snapshot row was
	// absent and live fields were served instead.
	SnapshotMissing bool `json:"snapshot_missing,omitempty"`
}

// Resolve picks the fields an activity bound at boundVersion should render.
// A missing historical snapshot degrades to the live fields rather than
// failing; only store faults and a missing template are errors.
func Resolve(dbc dbctx.Context, store Store, templateID uuid.UUID, boundVersion int) (*Resolution, error) {
	cur, err := store.Current(dbc, templateID)
	if err != nil {
		return nil, err
	}
	if cur == nil {
		return nil, ErrTemplateNotFound
	}
	live := &Resolution{
		TemplateID:    templateID,
		Fields:        cur.Fields,
		ServedVersion: cur.Version,
		BoundVersion:  boundVersion,
		LatestVersion: cur.Version,
	}
	if boundVersion >= cur.Version {
		return live, nil
	}

	snap, err := store.SnapshotAt(dbc, templateID, boundVersion)
	if err != nil {
		return nil, err
	}
	if snap == nil {
		live.SnapshotMissing = true
		return live, nil
	}
	return &Resolution{
		TemplateID:       templateID,
		Fields:           snap.Fields,
		ServedVersion:    snap.Version,
		BoundVersion:     boundVersion,
		LatestVersion:    cur.Version,
		UpgradeAvailable: true,
	}, nil
}
