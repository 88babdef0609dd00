package store

import (
	"database/sql"
	"fmt"

	"github.com/avivpaz10/importing-costs/internal/calculator"
)

// GetShipmentParams loads the saved shipment parameter preset. When no
// preset has been saved yet the zero value is returned with ok=false.
func (s *Store) GetShipmentParams() (calculator.ShipmentParameters, bool, error) {
	var p calculator.ShipmentParameters
	err := s.db.QueryRow(`
		SELECT container_cost, container_volume, import_tax_rate,
		       usd_to_local_rate, rmb_to_local_rate,
		       local_transport_cost, unloading_cost, additional_fees
		FROM shipment_params WHERE id = 1
	`).Scan(
		&p.ContainerCost, &p.ContainerVolume, &p.ImportTaxRate,
		&p.USDToLocalRate, &p.RMBToLocalRate,
		&p.LocalTransportCost, &p.UnloadingCost, &p.AdditionalFees,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return calculator.ShipmentParameters{}, false, nil
		}
		return calculator.ShipmentParameters{}, false, fmt.Errorf("failed to load shipment params: %w", err)
	}
	return p, true, nil
}

// SaveShipmentParams stores the shipment parameter preset, replacing any
// previously saved one.
func (s *Store) SaveShipmentParams(p calculator.ShipmentParameters) error {
	_, err := s.db.Exec(`
		INSERT INTO shipment_params (
			id, container_cost, container_volume, import_tax_rate,
			usd_to_local_rate, rmb_to_local_rate,
			local_transport_cost, unloading_cost, additional_fees
		) VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			container_cost = excluded.container_cost,
			container_volume = excluded.container_volume,
			import_tax_rate = excluded.import_tax_rate,
			usd_to_local_rate = excluded.usd_to_local_rate,
			rmb_to_local_rate = excluded.rmb_to_local_rate,
			local_transport_cost = excluded.local_transport_cost,
			unloading_cost = excluded.unloading_cost,
			additional_fees = excluded.additional_fees,
			updated_at = CURRENT_TIMESTAMP
	`,
		p.ContainerCost, p.ContainerVolume, p.ImportTaxRate,
		p.USDToLocalRate, p.RMBToLocalRate,
		p.LocalTransportCost, p.UnloadingCost, p.AdditionalFees,
	)
	if err != nil {
		return fmt.Errorf("failed to save shipment params: %w", err)
	}
	return nil
}
