package db

// SchemaSQL contains the database schema initialization SQL.
const SchemaSQL = `
    -- ==========================================================================
    -- EVENT TABLE (raw terminal events, immutable once recorded)
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS event SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS session_id ON event TYPE string;
    DEFINE FIELD IF NOT EXISTS timestamp ON event TYPE datetime;
    DEFINE FIELD IF NOT EXISTS cwd ON event TYPE string;
    DEFINE FIELD IF NOT EXISTS git_branch ON event TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS command ON event TYPE string;
    DEFINE FIELD IF NOT EXISTS exit_code ON event TYPE option<int>;
    DEFINE FIELD IF NOT EXISTS stdout_excerpt ON event TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS stderr_excerpt ON event TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS project_hash ON event TYPE string;
    -- Set once the event has been folded into a sequence episode
    DEFINE FIELD IF NOT EXISTS grouped ON event TYPE bool DEFAULT false;

    DEFINE INDEX IF NOT EXISTS event_timestamp ON event FIELDS timestamp;
    DEFINE INDEX IF NOT EXISTS event_project ON event FIELDS project_hash;
    DEFINE INDEX IF NOT EXISTS event_session ON event FIELDS session_id;

    -- ==========================================================================
    -- EPISODE TABLE (synthesized problem/fix records)
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS episode SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS project_hash ON episode TYPE string;
    DEFINE FIELD IF NOT EXISTS summary ON episode TYPE string;
    DEFINE FIELD IF NOT EXISTS problem ON episode TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS environment ON episode TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS fix ON episode TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS keywords ON episode TYPE array<string>;
    DEFINE FIELD IF NOT EXISTS embedding_id ON episode TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS created ON episode TYPE datetime DEFAULT time::now();

    DEFINE INDEX IF NOT EXISTS episode_project ON episode FIELDS project_hash;
    DEFINE INDEX IF NOT EXISTS episode_created ON episode FIELDS created;

    -- ==========================================================================
    -- EMBEDDING TABLE (one vector per episode)
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS embedding SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS episode_id ON embedding TYPE string;
    DEFINE FIELD IF NOT EXISTS vector ON embedding TYPE array<float>;
    DEFINE FIELD IF NOT EXISTS model ON embedding TYPE string;
    DEFINE FIELD IF NOT EXISTS created ON embedding TYPE datetime DEFAULT time::now();

    DEFINE INDEX IF NOT EXISTS embedding_episode ON embedding FIELDS episode_id UNIQUE;

    -- ==========================================================================
    -- SESSION TABLE (shell session bookkeeping)
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS session SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS last_seen ON session TYPE datetime DEFAULT time::now();
    DEFINE FIELD IF NOT EXISTS last_cwd ON session TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS last_branch ON session TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS event_count ON session TYPE int DEFAULT 0;
`
