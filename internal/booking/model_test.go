package booking

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wolfman30/nomad-detailing/internal/catalog"
)

func TestPresetSource(t *testing.T) {
	assert.Equal(t, catalog.SourceDirectBooking, Preset{}.Source())
	assert.Equal(t, catalog.SourceHomepageCategory, Preset{Category: catalog.CategoryPremium}.Source())
	assert.Equal(t, catalog.SourceServicesPage, Preset{Category: catalog.CategoryPremium, Service: "ceramic_coating"}.Source())
}

func TestPresetCategoryOnly(t *testing.T) {
	assert.True(t, Preset{Category: catalog.CategoryMaintenance}.CategoryOnly())
	assert.False(t, Preset{Category: catalog.CategoryMaintenance, Service: "maintenance_wash"}.CategoryOnly())
	assert.False(t, Preset{Category: catalog.CategoryCorporate}.CategoryOnly())
	assert.False(t, Preset{}.CategoryOnly())
}

func TestAppendAreaDetail(t *testing.T) {
	assert.Equal(t, "Service Area (Other): Shah Alam", AppendAreaDetail("", catalog.AreaOthers, " Shah Alam "))
	assert.Equal(t, "Gate code 12\n\nService Area (Other): Shah Alam", AppendAreaDetail("Gate code 12", catalog.AreaOthers, "Shah Alam"))
	assert.Equal(t, "Gate code 12", AppendAreaDetail("Gate code 12", "Cheras", "Shah Alam"))
	assert.Equal(t, "", AppendAreaDetail("", catalog.AreaOthers, "  "))
}

func TestFinalNotesWritesDetailOnce(t *testing.T) {
	d := BookingDraft{ServiceArea: catalog.AreaOthers, AreaOther: "Klang", Notes: "Basement B2"}
	once := d.FinalNotes()
	d.Notes = once
	twice := d.FinalNotes()
	assert.Equal(t, once, twice)
	assert.Equal(t, 1, strings.Count(twice, "Service Area (Other): Klang"))
}

func TestStepValid(t *testing.T) {
	for _, s := range Steps {
		assert.True(t, s.Valid())
	}
	assert.False(t, Step("variant").Valid())
}
