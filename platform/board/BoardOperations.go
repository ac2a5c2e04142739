package board

import (
	_ "embed"
	"encoding/json"
	"errors"

	"github.com/contactoiut/bancomaton-backend/app/models"
)

//go:embed properties.json
var propertiesJSON []byte

// LoadProperties returns the full board catalog in board order. The catalog is
// compiled in so the binary has no runtime file dependency.
func LoadProperties() []models.Property {
	var properties []models.Property
	if err := json.Unmarshal(propertiesJSON, &properties); err != nil {
		panic(err)
	}
	return properties
}

// LoadPurchasable returns only the squares a player can own (streets,
// railroads and utilities), in board order.
func LoadPurchasable() []models.Property {
	var purchasable []models.Property
	for _, property := range LoadProperties() {
		if property.Purchasable() {
			purchasable = append(purchasable, property)
		}
	}
	return purchasable
}

func GetById(id string, properties *[]models.Property) (models.Property, error) { // O(N) time complexity
	for _, property := range *properties {
		if property.Id == id {
			return property, nil
		}
	}
	return models.Property{}, errors.New("not found")
}
