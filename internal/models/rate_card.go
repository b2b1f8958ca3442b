package models

import "time"

// RateRecord is one normalized, computed rate row.
type RateRecord struct {
	RowNumber int `json:"rowNumber" csv:"row_number"`

	Origin              *string `json:"origin" csv:"origin,omitempty"`
	Destination         *string `json:"destination" csv:"destination,omitempty"`
	OriginCity          *string `json:"originCity" csv:"origin_city,omitempty"`
	OriginProvince      *string `json:"originProvince" csv:"origin_province,omitempty"`
	OriginPostal        *string `json:"originPostal" csv:"origin_postal,omitempty"`
	DestinationCity     *string `json:"destinationCity" csv:"destination_city,omitempty"`
	DestinationProvince *string `json:"destinationProvince" csv:"destination_province,omitempty"`
	DestinationPostal   *string `json:"destinationPostal" csv:"destination_postal,omitempty"`

	WeightMin  float64  `json:"weightMin" csv:"weight_min"`
	WeightMax  *float64 `json:"weightMax" csv:"weight_max,omitempty"`
	Weight     *float64 `json:"weight" csv:"weight,omitempty"`
	SkidCount  *int     `json:"skidCount" csv:"skid_count,omitempty"`
	LinearFeet *float64 `json:"linearFeet" csv:"linear_feet,omitempty"`
	Cube       *float64 `json:"cube" csv:"cube,omitempty"`
	Pieces     *int     `json:"pieces" csv:"pieces,omitempty"`

	BaseRate         float64  `json:"baseRate" csv:"base_rate"`
	FuelSurcharge    *float64 `json:"fuelSurcharge" csv:"fuel_surcharge,omitempty"`
	FuelSurchargePct *float64 `json:"fuelSurchargePct" csv:"fuel_surcharge_pct,omitempty"`
	MinCharge        *float64 `json:"minCharge" csv:"min_charge,omitempty"`
	Accessorials     *float64 `json:"accessorials" csv:"accessorials,omitempty"`
	TotalRate        *float64 `json:"totalRate" csv:"total_rate,omitempty"`

	ServiceLevel  *string `json:"serviceLevel" csv:"service_level,omitempty"`
	TransitDays   *int    `json:"transitDays" csv:"transit_days,omitempty"`
	EquipmentType *string `json:"equipmentType" csv:"equipment_type,omitempty"`

	CalculationType CalculationType `json:"calculationType" csv:"calculation_type"`
	BaseUnit        BaseUnit        `json:"baseUnit" csv:"base_unit"`
	MinimumApplied  bool            `json:"minimumApplied,omitempty" csv:"minimum_applied,omitempty"`

	Custom map[string]string `json:"custom,omitempty" csv:"-"`
}

// RateCard is the immutable batch of records produced by one import.
type RateCard struct {
	ID              string       `json:"id"`
	TemplateID      string       `json:"templateId"`
	TemplateVersion int          `json:"templateVersion"`
	CarrierID       string       `json:"carrierId"`
	Name            string       `json:"name,omitempty"`
	Status          string       `json:"status"`
	Records         []RateRecord `json:"records"`
	RecordCount     int          `json:"recordCount"`
	SkippedCount    int          `json:"skippedCount"`
	CreatedAt       time.Time    `json:"createdAt"`
	CreatedBy       string       `json:"createdBy,omitempty"`
}

const RateCardStatusActive = "active"

// UsageIncrement is applied to a template in the same write as a rate card.
type UsageIncrement struct {
	TemplateID string    `json:"templateId"`
	By         int       `json:"by"`
	LastUsedAt time.Time `json:"lastUsedAt"`
}
