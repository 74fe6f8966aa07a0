package units

import (
	"strings"

	"github.com/takeoff-group/recon-cli/internal/model"
)

// Category is a fixed taxonomy tag used to select matching rules.
type Category string

const (
	CategoryStorageTank  Category = "STORAGE_TANK"
	CategoryDayTank      Category = "DAY_TANK"
	CategoryPump         Category = "PUMP"
	CategoryFillingPoint Category = "FILLING_POINT"
	CategoryBallValve    Category = "BALL_VALVE"
	CategoryCheckValve   Category = "CHECK_VALVE"
	CategoryGateValve    Category = "GATE_VALVE"
	CategoryStrainer     Category = "STRAINER"
	CategoryPipe         Category = "PIPE"
	CategoryFlexibleHose Category = "FLEXIBLE_HOSE"
	CategoryVent         Category = "VENT"
	CategorySensor       Category = "SENSOR"
	CategoryLevelDevice  Category = "LEVEL_DEVICE"
	CategoryControlPanel Category = "CONTROL_PANEL"
	CategoryElectrical   Category = "ELECTRICAL"
	CategoryOther        Category = "OTHER"
)

// categoryRule matches a category by case-insensitive substring. Rules are
// evaluated top to bottom and the first hit wins, so specific phrases must
// precede the generic words they contain ("check valve" before "ball valve",
// "day tank" before "tank"). The order is a correctness property; do not
// sort or regroup this table.
type categoryRule struct {
	Category Category
	Keywords []string
}

var categoryRules = []categoryRule{
	{CategoryDayTank, []string{"day tank", "daytank"}},
	{CategoryFillingPoint, []string{"filling point", "fill point", "filling cabinet"}},
	{CategoryCheckValve, []string{"check valve", "non-return valve", "non return valve", "nrv"}},
	{CategoryBallValve, []string{"ball valve"}},
	{CategoryGateValve, []string{"gate valve"}},
	{CategoryStrainer, []string{"strainer"}},
	{CategoryFlexibleHose, []string{"flexible hose", "flex hose", "flexible connection", "hose"}},
	{CategoryVent, []string{"vent"}},
	{CategoryPump, []string{"pump"}},
	{CategoryLevelDevice, []string{"level switch", "level gauge", "level indicator", "level sensor", "level transmitter"}},
	{CategorySensor, []string{"sensor", "detector", "probe", "transmitter"}},
	{CategoryControlPanel, []string{"control panel", "panel"}},
	{CategoryStorageTank, []string{"storage tank", "bulk tank", "main tank", "fuel tank", "tank"}},
	{CategoryElectrical, []string{"cable", "wiring", "electrical", "conduit"}},
	{CategoryPipe, []string{"pipe", "piping"}},
}

// Categorize classifies an item by its item_type tag when it already names
// a category, otherwise by keyword rules over the description text.
// Deterministic: the same item always yields the same category.
func Categorize(item model.ExtractedItem) Category {
	if tag := Category(strings.ToUpper(strings.TrimSpace(item.ItemType))); tag != "" {
		for _, rule := range categoryRules {
			if tag == rule.Category {
				return tag
			}
		}
		if tag == CategoryOther {
			return CategoryOther
		}
	}

	text := strings.ToLower(item.DisplayDescription() + " " + item.ItemType)
	for _, rule := range categoryRules {
		for _, kw := range rule.Keywords {
			if strings.Contains(text, kw) {
				return rule.Category
			}
		}
	}
	return CategoryOther
}
