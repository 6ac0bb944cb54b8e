package roster

import "github.com/hyperjump/dutyroster/internal/models"

// DefaultShiftCodes returns the built-in code table. Codes are a two-letter shift
// type followed by the start hour.
func DefaultShiftCodes() map[string]models.ShiftCode {
	return map[string]models.ShiftCode{
		// Morning
		"MN06": {Label: "Morning 06:00-14:00", Category: models.Morning},
		"MN07": {Label: "Morning 07:00-15:00", Category: models.Morning},
		"MN08": {Label: "Morning 08:00-16:00", Category: models.Morning},
		"ME06": {Label: "Morning Extended 06:00-18:00", Category: models.Morning},
		"ME07": {Label: "Morning Extended 07:00-19:00", Category: models.Morning},

		// Afternoon
		"AN13": {Label: "Afternoon 13:00-21:00", Category: models.Afternoon},
		"AN14": {Label: "Afternoon 14:00-22:00", Category: models.Afternoon},
		"AN15": {Label: "Afternoon 15:00-23:00", Category: models.Afternoon},
		"AE12": {Label: "Afternoon Extended 12:00-24:00", Category: models.Afternoon},
		"AE14": {Label: "Afternoon Extended 14:00-02:00", Category: models.Afternoon},

		// Night
		"NN21": {Label: "Night 21:00-05:00", Category: models.Night},
		"NN22": {Label: "Night 22:00-06:00", Category: models.Night},
		"NN23": {Label: "Night 23:00-07:00", Category: models.Night},
		"NE18": {Label: "Night Extended 18:00-06:00", Category: models.Night},
		"NE19": {Label: "Night Extended 19:00-07:00", Category: models.Night},

		// Standby
		"ST06": {Label: "Standby 06:00", Category: models.Standby},
		"ST14": {Label: "Standby 14:00", Category: models.Standby},
		"ST22": {Label: "Standby 22:00", Category: models.Standby},
		"SB06": {Label: "Standby Extended 06:00", Category: models.Standby},
		"SB18": {Label: "Standby Extended 18:00", Category: models.Standby},
	}
}
