package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema is the DDL for all checkout collections. Counters on
// inventories, vouchers and wallets are guarded by CHECK constraints so
// a bug in a conditional update can never persist a negative balance.
const Schema = `
CREATE TABLE IF NOT EXISTS inventories (
	id UUID PRIMARY KEY,
	product_id VARCHAR(64) NOT NULL UNIQUE,
	seller_id VARCHAR(64) NOT NULL,
	total_stock INTEGER NOT NULL DEFAULT 0 CHECK (total_stock >= 0),
	reserved_stock INTEGER NOT NULL DEFAULT 0 CHECK (reserved_stock >= 0 AND reserved_stock <= total_stock),
	sold_stock INTEGER NOT NULL DEFAULT 0 CHECK (sold_stock >= 0),
	low_stock_threshold INTEGER NOT NULL DEFAULT 10,
	low_stock_alert BOOLEAN NOT NULL DEFAULT FALSE,
	status VARCHAR(20) NOT NULL DEFAULT 'in_stock',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_inventories_seller_id ON inventories(seller_id);

CREATE TABLE IF NOT EXISTS inventory_transactions (
	id UUID PRIMARY KEY,
	inventory_id UUID NOT NULL REFERENCES inventories(id),
	product_id VARCHAR(64) NOT NULL,
	type VARCHAR(20) NOT NULL,
	quantity INTEGER NOT NULL,
	balance_after INTEGER NOT NULL,
	reason VARCHAR(128) NOT NULL DEFAULT '',
	notes TEXT NOT NULL DEFAULT '',
	order_id UUID,
	created_by VARCHAR(64) NOT NULL DEFAULT 'system',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_inventory_tx_product_id ON inventory_transactions(product_id);
CREATE INDEX IF NOT EXISTS idx_inventory_tx_order_id ON inventory_transactions(order_id);

CREATE TABLE IF NOT EXISTS vouchers (
	id UUID PRIMARY KEY,
	code VARCHAR(64) NOT NULL UNIQUE,
	name VARCHAR(255) NOT NULL DEFAULT '',
	discount_type VARCHAR(20) NOT NULL,
	discount_value DOUBLE PRECISION NOT NULL,
	max_discount_amount DOUBLE PRECISION,
	min_order_amount DOUBLE PRECISION NOT NULL DEFAULT 0,
	shop_id VARCHAR(64),
	user_ids TEXT[] NOT NULL DEFAULT '{}',
	product_ids TEXT[] NOT NULL DEFAULT '{}',
	category_ids TEXT[] NOT NULL DEFAULT '{}',
	usage_limit INTEGER NOT NULL DEFAULT -1,
	used_count INTEGER NOT NULL DEFAULT 0 CHECK (used_count >= 0),
	per_user_limit INTEGER NOT NULL DEFAULT -1,
	start_date TIMESTAMPTZ NOT NULL,
	end_date TIMESTAMPTZ NOT NULL,
	status VARCHAR(20) NOT NULL DEFAULT 'active',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS user_vouchers (
	id UUID PRIMARY KEY,
	user_id VARCHAR(64) NOT NULL,
	voucher_id UUID NOT NULL REFERENCES vouchers(id),
	voucher_code VARCHAR(64) NOT NULL,
	is_used BOOLEAN NOT NULL DEFAULT FALSE,
	used_at TIMESTAMPTZ,
	order_id UUID,
	received_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	expires_at TIMESTAMPTZ NOT NULL,
	UNIQUE (user_id, voucher_id)
);

CREATE TABLE IF NOT EXISTS voucher_usages (
	id UUID PRIMARY KEY,
	user_id VARCHAR(64) NOT NULL,
	voucher_id UUID NOT NULL REFERENCES vouchers(id),
	voucher_code VARCHAR(64) NOT NULL,
	order_id UUID NOT NULL,
	order_amount DOUBLE PRECISION NOT NULL DEFAULT 0,
	discount_amount DOUBLE PRECISION NOT NULL DEFAULT 0,
	status VARCHAR(20) NOT NULL DEFAULT 'used',
	refunded_at TIMESTAMPTZ,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (user_id, order_id)
);

CREATE TABLE IF NOT EXISTS wallets (
	id UUID PRIMARY KEY,
	user_id VARCHAR(64) NOT NULL UNIQUE,
	balance DOUBLE PRECISION NOT NULL DEFAULT 0 CHECK (balance >= 0),
	status VARCHAR(20) NOT NULL DEFAULT 'active',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS wallet_transactions (
	id UUID PRIMARY KEY,
	wallet_id UUID NOT NULL REFERENCES wallets(id),
	user_id VARCHAR(64) NOT NULL,
	type VARCHAR(20) NOT NULL,
	amount DOUBLE PRECISION NOT NULL,
	balance_after DOUBLE PRECISION NOT NULL DEFAULT 0,
	reference_id VARCHAR(64),
	reference_type VARCHAR(32),
	status VARCHAR(20) NOT NULL DEFAULT 'completed',
	description TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_wallet_tx_user_id ON wallet_transactions(user_id);

CREATE TABLE IF NOT EXISTS orders (
	id UUID PRIMARY KEY,
	checkout_id UUID NOT NULL,
	user_id VARCHAR(64) NOT NULL,
	seller_id VARCHAR(64) NOT NULL,
	subtotal DOUBLE PRECISION NOT NULL DEFAULT 0,
	discount DOUBLE PRECISION NOT NULL DEFAULT 0,
	shipping_fee DOUBLE PRECISION NOT NULL DEFAULT 0,
	total DOUBLE PRECISION NOT NULL DEFAULT 0,
	status VARCHAR(20) NOT NULL DEFAULT 'pending',
	payment_method VARCHAR(20) NOT NULL DEFAULT 'cod',
	shipping_method VARCHAR(20) NOT NULL DEFAULT 'standard',
	shipping_address TEXT NOT NULL DEFAULT '',
	voucher_code VARCHAR(64),
	cancellation_reason TEXT,
	cancelled_by VARCHAR(64),
	return_reason TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_orders_user_id ON orders(user_id);
CREATE INDEX IF NOT EXISTS idx_orders_checkout_id ON orders(checkout_id);

CREATE TABLE IF NOT EXISTS order_items (
	id UUID PRIMARY KEY,
	order_id UUID NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
	product_id VARCHAR(64) NOT NULL,
	quantity INTEGER NOT NULL CHECK (quantity > 0),
	unit_price DOUBLE PRECISION NOT NULL,
	reviewed BOOLEAN NOT NULL DEFAULT FALSE,
	review_id UUID
);

CREATE INDEX IF NOT EXISTS idx_order_items_order_id ON order_items(order_id);

CREATE TABLE IF NOT EXISTS carts (
	user_id VARCHAR(64) PRIMARY KEY,
	voucher_code VARCHAR(64),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS cart_items (
	user_id VARCHAR(64) NOT NULL REFERENCES carts(user_id) ON DELETE CASCADE,
	product_id VARCHAR(64) NOT NULL,
	seller_id VARCHAR(64) NOT NULL,
	category_id VARCHAR(64) NOT NULL DEFAULT '',
	quantity INTEGER NOT NULL CHECK (quantity > 0),
	unit_price DOUBLE PRECISION NOT NULL,
	PRIMARY KEY (user_id, product_id)
);

CREATE TABLE IF NOT EXISTS payments (
	id UUID PRIMARY KEY,
	order_id UUID NOT NULL REFERENCES orders(id),
	user_id VARCHAR(64) NOT NULL,
	amount DOUBLE PRECISION NOT NULL,
	method VARCHAR(20) NOT NULL,
	status VARCHAR(20) NOT NULL DEFAULT 'pending',
	gateway_ref VARCHAR(128) NOT NULL DEFAULT '',
	pay_url TEXT NOT NULL DEFAULT '',
	paid_at TIMESTAMPTZ,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_payments_gateway_ref ON payments(gateway_ref);
`

// EnsureSchema applies the schema DDL. All statements are idempotent.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
