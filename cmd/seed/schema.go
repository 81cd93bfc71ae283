package main

const schemaDDL = `
CREATE TABLE IF NOT EXISTS alc_states (
	variant_id          TEXT PRIMARY KEY,
	average_landed_cost NUMERIC(14,6) NOT NULL DEFAULT 0,
	on_hand             BIGINT NOT NULL DEFAULT 0,
	updated_at          TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS cost_history (
	id               TEXT PRIMARY KEY,
	variant_id       TEXT NOT NULL,
	receipt_id       TEXT NOT NULL,
	previous_alc     NUMERIC(14,6) NOT NULL,
	new_alc          NUMERIC(14,6) NOT NULL,
	previous_on_hand BIGINT NOT NULL,
	new_on_hand      BIGINT NOT NULL,
	recorded_at      TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_cost_history_variant ON cost_history (variant_id, recorded_at DESC);

CREATE TABLE IF NOT EXISTS vendors (
	id            TEXT PRIMARY KEY,
	name          TEXT NOT NULL,
	contact_email TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS vendor_skus (
	vendor_id TEXT NOT NULL REFERENCES vendors (id),
	sku       TEXT NOT NULL,
	PRIMARY KEY (vendor_id, sku)
);
CREATE INDEX IF NOT EXISTS idx_vendor_skus_sku ON vendor_skus (sku);

CREATE TABLE IF NOT EXISTS vendor_orders (
	order_id               TEXT PRIMARY KEY,
	vendor_id              TEXT NOT NULL,
	sku                    TEXT NOT NULL,
	quantity               BIGINT NOT NULL,
	cost_per_unit          NUMERIC(14,6) NOT NULL,
	order_date             TIMESTAMPTZ NOT NULL,
	expected_delivery_date TIMESTAMPTZ NOT NULL,
	actual_delivery_date   TIMESTAMPTZ,
	status                 TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_vendor_orders_vendor ON vendor_orders (vendor_id, order_date);

CREATE TABLE IF NOT EXISTS daily_sales (
	sku      TEXT NOT NULL,
	day      DATE NOT NULL,
	quantity BIGINT NOT NULL,
	PRIMARY KEY (sku, day)
);

CREATE TABLE IF NOT EXISTS local_vendor_options (
	vendor_id      TEXT NOT NULL,
	vendor_name    TEXT NOT NULL,
	sku            TEXT NOT NULL,
	cost_per_unit  NUMERIC(14,6) NOT NULL,
	lead_time_days DOUBLE PRECISION NOT NULL,
	reliability    DOUBLE PRECISION NOT NULL,
	min_order_qty  BIGINT NOT NULL DEFAULT 0,
	is_local       BOOLEAN NOT NULL DEFAULT TRUE,
	PRIMARY KEY (vendor_id, sku)
);
CREATE INDEX IF NOT EXISTS idx_local_vendor_options_sku ON local_vendor_options (sku);

CREATE TABLE IF NOT EXISTS purchase_orders (
	id                     TEXT PRIMARY KEY,
	po_number              TEXT NOT NULL UNIQUE,
	vendor_id              TEXT NOT NULL,
	vendor_name            TEXT NOT NULL DEFAULT '',
	sku                    TEXT NOT NULL,
	quantity               BIGINT NOT NULL,
	cost_per_unit          NUMERIC(14,6) NOT NULL,
	total_cost             NUMERIC(14,6) NOT NULL,
	status                 TEXT NOT NULL,
	created_date           TIMESTAMPTZ NOT NULL,
	ordered_date           TIMESTAMPTZ,
	shipped_date           TIMESTAMPTZ,
	expected_delivery_date TIMESTAMPTZ,
	actual_delivery_date   TIMESTAMPTZ,
	notes                  TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_purchase_orders_status ON purchase_orders (status, created_date DESC);

CREATE TABLE IF NOT EXISTS reorder_suggestions (
	id               TEXT PRIMARY KEY,
	product_id       TEXT NOT NULL,
	variant_id       TEXT NOT NULL,
	reorder_point    BIGINT NOT NULL,
	safety_stock     BIGINT NOT NULL,
	recommended_qty  BIGINT NOT NULL,
	vendor_id        TEXT NOT NULL DEFAULT '',
	estimated_cost   NUMERIC(14,6) NOT NULL DEFAULT 0,
	confidence_score DOUBLE PRECISION NOT NULL,
	status           TEXT NOT NULL,
	created_at       TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_reorder_suggestions_product ON reorder_suggestions (product_id, created_at DESC);
`

// sampleData gives a small but workable demo set: three vendors with
// delivery history of varying quality, a month of sales for two SKUs,
// and local sourcing options for one of them.
var sampleData = []string{
	`INSERT INTO vendors (id, name, contact_email) VALUES
		('v-acme', 'Acme Supply Co', 'orders@acme.example'),
		('v-globex', 'Globex Trading', 'po@globex.example'),
		('v-initech', 'Initech Wholesale', 'buy@initech.example')
	ON CONFLICT (id) DO NOTHING`,

	`INSERT INTO vendor_skus (vendor_id, sku) VALUES
		('v-acme', 'SKU-TSHIRT-BLK'),
		('v-globex', 'SKU-TSHIRT-BLK'),
		('v-initech', 'SKU-TSHIRT-BLK'),
		('v-acme', 'SKU-MUG-WHT'),
		('v-globex', 'SKU-MUG-WHT')
	ON CONFLICT DO NOTHING`,

	`INSERT INTO vendor_orders (order_id, vendor_id, sku, quantity, cost_per_unit,
		order_date, expected_delivery_date, actual_delivery_date, status) VALUES
		('vo-1', 'v-acme', 'SKU-TSHIRT-BLK', 200, 4.50,
			NOW() - INTERVAL '45 days', NOW() - INTERVAL '38 days', NOW() - INTERVAL '38 days', 'delivered'),
		('vo-2', 'v-acme', 'SKU-TSHIRT-BLK', 150, 4.60,
			NOW() - INTERVAL '30 days', NOW() - INTERVAL '23 days', NOW() - INTERVAL '22 days', 'delivered'),
		('vo-3', 'v-acme', 'SKU-MUG-WHT', 100, 2.10,
			NOW() - INTERVAL '20 days', NOW() - INTERVAL '13 days', NOW() - INTERVAL '13 days', 'delivered'),
		('vo-4', 'v-globex', 'SKU-TSHIRT-BLK', 300, 4.20,
			NOW() - INTERVAL '60 days', NOW() - INTERVAL '48 days', NOW() - INTERVAL '41 days', 'delivered'),
		('vo-5', 'v-globex', 'SKU-TSHIRT-BLK', 250, 4.25,
			NOW() - INTERVAL '35 days', NOW() - INTERVAL '23 days', NOW() - INTERVAL '18 days', 'delivered'),
		('vo-6', 'v-initech', 'SKU-TSHIRT-BLK', 100, 5.10,
			NOW() - INTERVAL '10 days', NOW() - INTERVAL '3 days', NULL, 'ordered')
	ON CONFLICT (order_id) DO NOTHING`,

	`INSERT INTO daily_sales (sku, day, quantity)
		SELECT 'SKU-TSHIRT-BLK', d::date, 3 + (EXTRACT(DOW FROM d)::int % 3)
		FROM generate_series(NOW() - INTERVAL '29 days', NOW(), INTERVAL '1 day') AS d
	ON CONFLICT DO NOTHING`,

	`INSERT INTO daily_sales (sku, day, quantity)
		SELECT 'SKU-MUG-WHT', d::date, 1
		FROM generate_series(NOW() - INTERVAL '29 days', NOW(), INTERVAL '2 days') AS d
	ON CONFLICT DO NOTHING`,

	`INSERT INTO local_vendor_options (vendor_id, vendor_name, sku, cost_per_unit,
		lead_time_days, reliability, min_order_qty, is_local) VALUES
		('v-local-1', 'Metro Print Shop', 'SKU-TSHIRT-BLK', 5.80, 2, 0.92, 50, TRUE),
		('v-local-2', 'Same Day Apparel', 'SKU-TSHIRT-BLK', 6.40, 1, 0.97, 25, TRUE),
		('v-local-3', 'Budget Blanks', 'SKU-TSHIRT-BLK', 5.20, 4, 0.78, 100, TRUE)
	ON CONFLICT DO NOTHING`,

	`INSERT INTO alc_states (variant_id, average_landed_cost, on_hand) VALUES
		('var-tshirt-blk-m', 5.15, 42),
		('var-mug-wht', 2.45, 18)
	ON CONFLICT (variant_id) DO NOTHING`,
}
