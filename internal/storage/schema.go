package storage

const schema = `
-- Posts table: generated content items
CREATE TABLE IF NOT EXISTS posts (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    persona_id TEXT NOT NULL DEFAULT '',
    category TEXT NOT NULL DEFAULT '',
    title TEXT NOT NULL CHECK(length(title) <= 500),
    content TEXT NOT NULL,
    shorts_script TEXT NOT NULL DEFAULT '',
    writer TEXT NOT NULL DEFAULT '',
    hits INTEGER NOT NULL DEFAULT 0,
    fingerprint TEXT NOT NULL UNIQUE CHECK(length(fingerprint) = 64),
    source_url TEXT NOT NULL DEFAULT '',
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_posts_category ON posts(category);
CREATE INDEX IF NOT EXISTS idx_posts_created_at ON posts(created_at);

-- Replies table: persona reactions, five per post on the success path
CREATE TABLE IF NOT EXISTS replies (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    post_id INTEGER NOT NULL,
    persona_id TEXT NOT NULL DEFAULT '',
    writer TEXT NOT NULL DEFAULT '',
    content TEXT NOT NULL,
    position INTEGER NOT NULL CHECK(position >= 1 AND position <= 5),
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (post_id) REFERENCES posts(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_replies_post ON replies(post_id);

-- Personas table: the commenter pool
CREATE TABLE IF NOT EXISTS personas (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    job TEXT NOT NULL DEFAULT '',
    prompt TEXT NOT NULL DEFAULT '',
    avatar_url TEXT NOT NULL DEFAULT ''
);

-- Production queue: one row per downstream production request
CREATE TABLE IF NOT EXISTS production_queue (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    post_id INTEGER NOT NULL,
    video_type TEXT NOT NULL DEFAULT 'INFO',
    status INTEGER NOT NULL DEFAULT 0,  -- 0=pending, 1=completed, 9=failed
    video_path TEXT NOT NULL DEFAULT '',
    thumbnail_path TEXT NOT NULL DEFAULT '',
    error_msg TEXT NOT NULL DEFAULT '',
    requested_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    completed_at DATETIME,
    FOREIGN KEY (post_id) REFERENCES posts(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_production_queue_post ON production_queue(post_id);
CREATE INDEX IF NOT EXISTS idx_production_queue_status ON production_queue(status);
`

// Production queue status values.
const (
	productionPending   = 0
	productionCompleted = 1
	productionFailed    = 9
)
