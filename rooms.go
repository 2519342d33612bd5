package inventory

// PredefinedRooms is the room catalogue offered when authoring a report.
// Operators can still name rooms freely; this list only seeds the picker.
var PredefinedRooms = []string{
	"Front Garden", "Porch", "Meter Cupboard", "Hallway", "WC",
	"Living Room", "Dining Room", "Kitchen", "Stairs", "Landing",
	"Airing Cupboard", "Bedroom 1", "Bedroom 2", "Bedroom 3", "Bedroom 4",
	"Bedroom 5", "Ensuite", "Bathroom", "Misc First Floor", "Rear Garden",
	"Outbuilding", "Garage", "Loft",
}
