package mysql

const createFixturesSQL = `
CREATE TABLE IF NOT EXISTS fixtures (
  name       VARCHAR(128) NOT NULL PRIMARY KEY,
  payload    LONGTEXT     NOT NULL,
  updated_at TIMESTAMP    NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
) DEFAULT CHARSET = utf8mb4
`

const upsertFixtureSQL = `
INSERT INTO fixtures (name, payload)
VALUES (?, ?)
ON DUPLICATE KEY UPDATE
  payload    = VALUES(payload),
  updated_at = CURRENT_TIMESTAMP
`

const getFixtureSQL = `SELECT payload FROM fixtures WHERE name = ?`
