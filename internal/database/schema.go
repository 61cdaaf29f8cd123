package database

// SetupSchema creates the storefront tables.
func (db *DB) SetupSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
		    id BIGINT PRIMARY KEY AUTO_INCREMENT,
		    username VARCHAR(150) NOT NULL,
		    first_name VARCHAR(100) NOT NULL DEFAULT '',
		    last_name VARCHAR(100) NOT NULL DEFAULT '',
		    password_hash VARCHAR(100) NOT NULL,
		    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		    UNIQUE KEY uk_username (username)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

		`CREATE TABLE IF NOT EXISTS profiles (
		    id BIGINT PRIMARY KEY AUTO_INCREMENT,
		    user_id BIGINT NOT NULL,
		    full_name VARCHAR(100) NOT NULL DEFAULT '',
		    email VARCHAR(100) NOT NULL DEFAULT '',
		    phone VARCHAR(17) NOT NULL DEFAULT '',
		    FOREIGN KEY (user_id) REFERENCES users(id),
		    UNIQUE KEY uk_user (user_id)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

		`CREATE TABLE IF NOT EXISTS products (
		    id BIGINT PRIMARY KEY AUTO_INCREMENT,
		    title VARCHAR(200) NOT NULL,
		    description TEXT,
		    price DECIMAL(10,2) NOT NULL DEFAULT 0,
		    count INT NOT NULL DEFAULT 0,
		    free_delivery BOOLEAN NOT NULL DEFAULT FALSE,
		    discount DECIMAL(4,1) NOT NULL DEFAULT 0,
		    sale_price DECIMAL(10,2) NULL,
		    date_from DATETIME NULL,
		    date_to DATETIME NULL,
		    rating DECIMAL(2,1) NULL,
		    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		    UNIQUE KEY uk_title (title),
		    INDEX idx_count (count),
		    INDEX idx_price (price)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

		`CREATE TABLE IF NOT EXISTS tags (
		    id BIGINT PRIMARY KEY AUTO_INCREMENT,
		    name VARCHAR(100) NOT NULL,
		    UNIQUE KEY uk_name (name)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

		`CREATE TABLE IF NOT EXISTS product_tags (
		    product_id BIGINT NOT NULL,
		    tag_id BIGINT NOT NULL,
		    PRIMARY KEY (product_id, tag_id),
		    FOREIGN KEY (product_id) REFERENCES products(id),
		    FOREIGN KEY (tag_id) REFERENCES tags(id)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

		`CREATE TABLE IF NOT EXISTS reviews (
		    id BIGINT PRIMARY KEY AUTO_INCREMENT,
		    product_id BIGINT NOT NULL,
		    author_id BIGINT NULL,
		    author VARCHAR(100) NOT NULL DEFAULT '',
		    email VARCHAR(100) NOT NULL DEFAULT '',
		    text TEXT,
		    rate SMALLINT NOT NULL,
		    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		    FOREIGN KEY (product_id) REFERENCES products(id),
		    INDEX idx_product (product_id)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

		`CREATE TABLE IF NOT EXISTS orders (
		    id BIGINT PRIMARY KEY AUTO_INCREMENT,
		    user_id BIGINT NULL,
		    token VARCHAR(32) NULL,
		    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		    full_name VARCHAR(100) NOT NULL DEFAULT '',
		    email VARCHAR(100) NOT NULL DEFAULT '',
		    phone VARCHAR(17) NOT NULL DEFAULT '',
		    delivery_type VARCHAR(10) NOT NULL DEFAULT 'ordinary',
		    payment_type VARCHAR(10) NOT NULL DEFAULT 'online',
		    total_cost DECIMAL(10,2) NOT NULL DEFAULT 0,
		    status VARCHAR(30) NOT NULL,
		    city VARCHAR(100) NOT NULL DEFAULT '',
		    address VARCHAR(100) NOT NULL DEFAULT '',
		    INDEX idx_user (user_id),
		    INDEX idx_token (token)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

		`CREATE TABLE IF NOT EXISTS baskets (
		    id BIGINT PRIMARY KEY AUTO_INCREMENT,
		    user_id BIGINT NULL,
		    token VARCHAR(32) NULL,
		    product_id BIGINT NOT NULL,
		    count INT NOT NULL DEFAULT 0,
		    order_id BIGINT NULL,
		    archived BOOLEAN NOT NULL DEFAULT FALSE,
		    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		    FOREIGN KEY (product_id) REFERENCES products(id),
		    FOREIGN KEY (order_id) REFERENCES orders(id),
		    INDEX idx_owner_user (user_id, archived),
		    INDEX idx_owner_token (token, archived),
		    INDEX idx_order (order_id)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}

	return nil
}

// CleanupData removes all rows but keeps the schema.
func (db *DB) CleanupData() error {
	queries := []string{
		"DELETE FROM baskets",
		"DELETE FROM orders",
		"DELETE FROM reviews",
		"DELETE FROM product_tags",
		"DELETE FROM tags",
		"DELETE FROM products",
		"DELETE FROM profiles",
		"DELETE FROM users",
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return err
		}
	}

	return nil
}

// DropSchema removes all storefront tables.
func (db *DB) DropSchema() error {
	queries := []string{
		"DROP TABLE IF EXISTS baskets",
		"DROP TABLE IF EXISTS orders",
		"DROP TABLE IF EXISTS reviews",
		"DROP TABLE IF EXISTS product_tags",
		"DROP TABLE IF EXISTS tags",
		"DROP TABLE IF EXISTS products",
		"DROP TABLE IF EXISTS profiles",
		"DROP TABLE IF EXISTS users",
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return err
		}
	}

	return nil
}
