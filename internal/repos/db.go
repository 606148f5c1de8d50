package repos

import (
	"log"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"
)

func OpenDB(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}

	if err := ensureSchema(db); err != nil {
		return nil, err
	}
	// Seed baseline data if DB is empty (categories/products/events)
	if err := seedIfEmpty(db); err != nil {
		return nil, err
	}
	// Ensure users exist (idempotent; safe to run every start)
	if err := seedUsers(db); err != nil {
		return nil, err
	}

	return db, nil
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
PRAGMA foreign_keys = ON;

-- Users & Sessions
CREATE TABLE IF NOT EXISTS users(
  id TEXT PRIMARY KEY,
  username TEXT NOT NULL UNIQUE,
  minecraft_username TEXT NOT NULL DEFAULT '',
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  role TEXT NOT NULL CHECK (role IN ('PLAYER','HELPER','BUILDER','MODERATOR','ADMIN','DEVELOPER')),
  avatar_url TEXT NOT NULL DEFAULT '',
  bio TEXT NOT NULL DEFAULT '',
  date_joined TEXT DEFAULT CURRENT_TIMESTAMP,
  grovs_balance INTEGER NOT NULL DEFAULT 0,
  total_grovs_earned INTEGER NOT NULL DEFAULT 0,
  total_grovs_spent INTEGER NOT NULL DEFAULT 0,
  current_login_streak INTEGER NOT NULL DEFAULT 0,
  longest_login_streak INTEGER NOT NULL DEFAULT 0,
  last_daily_claim TEXT NOT NULL DEFAULT ''
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users(LOWER(email));
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_username ON users(LOWER(username));

CREATE TABLE IF NOT EXISTS sessions(
  id TEXT PRIMARY KEY,               -- same value as the 'sid' cookie
  user_id TEXT NULL REFERENCES users(id) ON DELETE SET NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  last_seen  TEXT
);
CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id);

-- Store
CREATE TABLE IF NOT EXISTS categories(
  id TEXT PRIMARY KEY,
  slug TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  icon TEXT NOT NULL DEFAULT '',
  color TEXT NOT NULL DEFAULT '',
  sort_order INTEGER NOT NULL DEFAULT 0,
  product_type TEXT NOT NULL CHECK (product_type IN ('rank','cosmetic','crate','feature','item'))
);

CREATE TABLE IF NOT EXISTS products(
  id TEXT PRIMARY KEY,
  category_id TEXT NOT NULL REFERENCES categories(id) ON DELETE RESTRICT,
  name TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  type TEXT NOT NULL CHECK (type IN ('rank','cosmetic','crate','feature','item')),
  rarity TEXT NOT NULL CHECK (rarity IN ('common','rare','epic','legendary')),
  price NUMERIC NOT NULL CHECK (price >= 0),
  discount_price NUMERIC NOT NULL DEFAULT 0 CHECK (discount_price = 0 OR discount_price < price),
  image_url TEXT NOT NULL DEFAULT '',
  featured INTEGER NOT NULL DEFAULT 0,
  is_new INTEGER NOT NULL DEFAULT 0,
  stock INTEGER,                      -- NULL = unlimited
  active INTEGER NOT NULL DEFAULT 1,
  grovs_price INTEGER NOT NULL DEFAULT 0,
  payment_methods TEXT NOT NULL DEFAULT 'money',
  cashback_percentage INTEGER NOT NULL DEFAULT 0,
  payload_json TEXT NOT NULL DEFAULT '{}',
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT
);
CREATE INDEX IF NOT EXISTS idx_products_category ON products(category_id);
CREATE INDEX IF NOT EXISTS idx_products_type     ON products(type);

CREATE TABLE IF NOT EXISTS offers(
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  image_url TEXT NOT NULL DEFAULT '',
  product_id TEXT NOT NULL DEFAULT '',
  category_id TEXT NOT NULL DEFAULT '',
  discount_percent INTEGER NOT NULL CHECK (discount_percent BETWEEN 1 AND 99),
  start_date TEXT NOT NULL,
  end_date TEXT NOT NULL,
  active INTEGER NOT NULL DEFAULT 1,
  priority INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS orders(
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL DEFAULT '',
  session_id TEXT NOT NULL DEFAULT '',
  payment_method TEXT NOT NULL CHECK (payment_method IN ('money','grovs')),
  total NUMERIC NOT NULL DEFAULT 0,
  total_grovs INTEGER NOT NULL DEFAULT 0,
  status TEXT NOT NULL DEFAULT 'PENDING',
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders(created_at);

CREATE TABLE IF NOT EXISTS order_items(
  order_id  TEXT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
  product_id TEXT NOT NULL,
  name TEXT NOT NULL,
  qty INTEGER NOT NULL,
  price NUMERIC NOT NULL,            -- money price snapshot at add time
  grovs_price INTEGER NOT NULL DEFAULT 0,
  PRIMARY KEY (order_id, product_id)
);

-- Grovs ledger
CREATE TABLE IF NOT EXISTS grov_transactions(
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  type TEXT NOT NULL CHECK (type IN ('daily_login','login_streak_bonus','event_completion',
    'purchase_cashback','store_purchase','admin_adjustment','admin_grant','admin_deduct')),
  amount INTEGER NOT NULL,
  balance_after INTEGER NOT NULL,
  status TEXT NOT NULL DEFAULT 'completed' CHECK (status IN ('pending','completed','failed','cancelled')),
  description TEXT NOT NULL DEFAULT '',
  reference_id TEXT NOT NULL DEFAULT '',
  reference_type TEXT NOT NULL DEFAULT '',
  admin_user_id TEXT NOT NULL DEFAULT '',
  admin_reason TEXT NOT NULL DEFAULT '',
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_grov_tx_user ON grov_transactions(user_id, created_at);

CREATE TABLE IF NOT EXISTS login_streaks(
  user_id TEXT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
  current_streak INTEGER NOT NULL DEFAULT 0,
  longest_streak INTEGER NOT NULL DEFAULT 0,
  last_login_date TEXT NOT NULL DEFAULT '',
  last_reward_claim TEXT NOT NULL DEFAULT '',
  total_daily_logins INTEGER NOT NULL DEFAULT 0,
  milestones_reached TEXT NOT NULL DEFAULT ''
);

-- Events calendar
CREATE TABLE IF NOT EXISTS events(
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  date TEXT NOT NULL,                -- YYYY-MM-DD
  start_time TEXT NOT NULL,          -- HH:mm
  end_time TEXT NOT NULL DEFAULT '',
  category TEXT NOT NULL CHECK (category IN ('pvp','evento','actualizacion','torneo','construccion','comunidad')),
  status TEXT NOT NULL DEFAULT 'upcoming' CHECK (status IN ('upcoming','ongoing','completed','cancelled')),
  banner_url TEXT NOT NULL DEFAULT '',
  location TEXT NOT NULL DEFAULT '',
  max_participants INTEGER NOT NULL DEFAULT 0,
  current_participants INTEGER NOT NULL DEFAULT 0,
  grovs_reward INTEGER NOT NULL DEFAULT 0,
  prizes_json TEXT NOT NULL DEFAULT '[]',
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT
);
CREATE INDEX IF NOT EXISTS idx_events_date ON events(date);

CREATE TABLE IF NOT EXISTS event_participations(
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  event_id TEXT NOT NULL REFERENCES events(id) ON DELETE CASCADE,
  status TEXT NOT NULL DEFAULT 'completed',
  grovs_reward INTEGER NOT NULL DEFAULT 0,
  completed_at TEXT DEFAULT CURRENT_TIMESTAMP,
  UNIQUE(user_id, event_id)
);

-- Forum
CREATE TABLE IF NOT EXISTS posts(
  id TEXT PRIMARY KEY,
  slug TEXT NOT NULL UNIQUE,
  author_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  category TEXT NOT NULL DEFAULT 'general',
  title TEXT NOT NULL,
  content TEXT NOT NULL,
  likes INTEGER NOT NULL DEFAULT 0,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_posts_created_at ON posts(created_at);

CREATE TABLE IF NOT EXISTS post_likes(
  post_id TEXT NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
  user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  PRIMARY KEY (post_id, user_id)
);

CREATE TABLE IF NOT EXISTS comments(
  id TEXT PRIMARY KEY,
  post_id TEXT NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
  author_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  content TEXT NOT NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_comments_post ON comments(post_id);

-- Gallery
CREATE TABLE IF NOT EXISTS gallery_categories(
  id TEXT PRIMARY KEY,
  slug TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  icon TEXT NOT NULL DEFAULT '',
  active INTEGER NOT NULL DEFAULT 1
);

CREATE TABLE IF NOT EXISTS gallery_images(
  id TEXT PRIMARY KEY,
  category_id TEXT NOT NULL REFERENCES gallery_categories(id) ON DELETE CASCADE,
  title TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  image_url TEXT NOT NULL,
  thumbnail_url TEXT NOT NULL DEFAULT '',
  author TEXT NOT NULL DEFAULT '',
  is_featured INTEGER NOT NULL DEFAULT 0,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_gallery_images_category ON gallery_images(category_id);

-- Admin product drafts (crash-recovery cache; last write wins)
CREATE TABLE IF NOT EXISTS product_drafts(
  user_id TEXT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
  payload_json TEXT NOT NULL,
  saved_at TEXT NOT NULL
);
`
	_, err := db.Exec(schema)
	return err
}

func seedIfEmpty(db *sqlx.DB) error {
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM categories`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	log.Println("[seed] inserting demo categories/products/events")

	tx := db.MustBegin()
	tx.MustExec(`INSERT INTO categories(id,slug,name,description,icon,sort_order,product_type) VALUES
	  ('cat-ranks','rangos','Rangos','Rangos VIP con beneficios','👑',1,'rank'),
	  ('cat-cosmetics','cosmeticos','Cosméticos','Partículas, mascotas y más','✨',2,'cosmetic'),
	  ('cat-crates','cajas','Cajas','Cajas de recompensas','🎁',3,'crate'),
	  ('cat-features','funciones','Funciones','Habilidades exclusivas','⚡',4,'feature'),
	  ('cat-items','items','Items','Recursos y consumibles','📦',5,'item')`)

	tx.MustExec(`INSERT INTO products(id,category_id,name,description,type,rarity,price,discount_price,
	    grovs_price,payment_methods,cashback_percentage,payload_json) VALUES
	  ('rank-vip','cat-ranks','Rango VIP','Acceso VIP con kits y prefijo','rank','epic',19.99,14.99,
	    0,'money',5,'{"color":"#f59e0b","prefix":"[VIP]","priority":10,"benefits":[{"text":"Kit VIP semanal","highlight":true},{"text":"Acceso a /fly en lobby"}],"commands":["/kit vip"]}'),
	  ('cosmetic-dragon-wings','cat-cosmetics','Alas de Dragón','Alas animadas legendarias','cosmetic','legendary',9.99,0,
	    2500,'both',0,'{"cosmeticType":"wings","colors":["#ef4444","#8b5cf6"]}'),
	  ('crate-mystic','cat-crates','Caja Mística','Caja con recompensas épicas','crate','epic',4.99,0,
	    1200,'both',0,'{"possibleItems":[{"name":"Espada encantada","rarity":"epic","probability":12.5},{"name":"Llave extra","rarity":"common","probability":50}],"guaranteedRarity":"rare"}'),
	  ('feature-fly-30d','cat-features','Vuelo 30 días','Comando /fly por un mes','feature','rare',7.99,0,
	    1800,'both',0,'{"command":"/fly","duration":"monthly"}'),
	  ('item-grovs-pack','cat-items','Pack 500 Grovs','500 Grovs para tu cuenta','item','common',2.99,0,
	    0,'money',0,'{"quantity":500,"stackable":true}')`)

	tx.MustExec(`INSERT INTO offers(id,title,description,discount_percent,start_date,end_date,active,priority) VALUES
	  ('offer-launch','Oferta de lanzamiento','Descuento en rangos',25,'2026-01-01','2026-12-31',1,1)`)

	tx.MustExec(`INSERT INTO gallery_categories(id,slug,name,description,icon) VALUES
	  ('gal-builds','construcciones','Construcciones','Las mejores obras del servidor','🏰'),
	  ('gal-events','eventos','Eventos','Momentos de la comunidad','🎉')`)

	tx.MustExec(`INSERT INTO gallery_images(id,category_id,title,description,image_url,thumbnail_url,author,is_featured) VALUES
	  ('img-castle','gal-builds','Castillo del Norte','Ganador del concurso de castillos',
	    '/media/gallery/castle.png','/media/gallery/castle_thumb.png','Steve',1),
	  ('img-farm','gal-builds','Granja automática','Granja de hierro a gran escala',
	    '/media/gallery/farm.png','/media/gallery/farm_thumb.png','Alex',0),
	  ('img-meetup','gal-events','Encuentro de agosto','Foto grupal del encuentro comunitario',
	    '/media/gallery/meetup.png','/media/gallery/meetup_thumb.png','Admin',0)`)

	tx.MustExec(`INSERT INTO events(id,title,description,date,start_time,end_time,category,status,grovs_reward,prizes_json) VALUES
	  ('evt-pvp-night','Noche PvP','Torneo PvP nocturno','2026-09-05','21:00','23:00','pvp','upcoming',150,
	    '[{"name":"Espada legendaria","rarity":"legendary","position":1}]'),
	  ('evt-build-contest','Concurso de Construcción','Tema: castillos','2026-09-12','18:00','','construccion','upcoming',200,'[]'),
	  ('evt-community-meet','Encuentro Comunitario','Charla con el staff','2026-08-20','20:00','','comunidad','completed',50,'[]')`)

	return tx.Commit()
}

// seedUsers ensures a PLAYER and an ADMIN exist (idempotent).
func seedUsers(db *sqlx.DB) error {
	type u struct {
		ID, Username, Minecraft, Email, Role, Hash string
	}
	mk := func(id, username, email, role, raw string) u {
		h, _ := bcrypt.GenerateFromPassword([]byte(raw), 12)
		return u{ID: id, Username: username, Minecraft: username, Email: email, Role: role, Hash: string(h)}
	}

	users := []u{
		mk("u-steve", "Steve", "steve@grivyzom.test", "PLAYER", "Passw0rd!"),
		mk("u-alex", "Alex", "alex@grivyzom.test", "PLAYER", "Passw0rd!"),
		mk("u-admin", "Admin", "admin@grivyzom.test", "ADMIN", "Passw0rd!"),
	}

	tx := db.MustBegin()
	defer func() { _ = tx.Rollback() }()

	for _, x := range users {
		if _, err := tx.Exec(`
			INSERT INTO users(id,username,minecraft_username,email,password_hash,role)
			VALUES(?,?,?,?,?,?)
			ON CONFLICT(email) DO NOTHING
		`, x.ID, x.Username, x.Minecraft, x.Email, x.Hash, x.Role); err != nil {
			return err
		}
	}

	return tx.Commit()
}
