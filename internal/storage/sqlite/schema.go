package sqlite

const schema = `
-- Households (id is the external household UUID, treated as stable)
CREATE TABLE IF NOT EXISTS households (
    id TEXT PRIMARY KEY,
    household_name TEXT NOT NULL,
    address TEXT
);

-- Members (never bulk-deleted; church_id is the only cross-release stable id)
CREATE TABLE IF NOT EXISTS members (
    id TEXT PRIMARY KEY,
    household_id TEXT REFERENCES households(id),
    first_name TEXT NOT NULL DEFAULT '',
    last_name TEXT NOT NULL DEFAULT '',
    email TEXT,
    phone TEXT,
    gender TEXT,
    age INTEGER,
    is_active INTEGER NOT NULL DEFAULT 1,
    church_id INTEGER UNIQUE,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME
);

CREATE INDEX IF NOT EXISTS idx_members_household ON members(household_id);
CREATE INDEX IF NOT EXISTS idx_members_name ON members(last_name, first_name);

-- Organizations (name is the natural key; rows are destroyed and recreated
-- on every full sync)
CREATE TABLE IF NOT EXISTS organizations (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL UNIQUE,
    parent_org_id TEXT REFERENCES organizations(id),
    display_order INTEGER NOT NULL DEFAULT 50
);

-- Callings (natural key is (organization, title))
CREATE TABLE IF NOT EXISTS callings (
    id TEXT PRIMARY KEY,
    organization_id TEXT NOT NULL REFERENCES organizations(id),
    title TEXT NOT NULL,
    requires_setting_apart INTEGER NOT NULL DEFAULT 1,
    display_order INTEGER NOT NULL DEFAULT 50,
    UNIQUE(organization_id, title)
);

CREATE INDEX IF NOT EXISTS idx_callings_org ON callings(organization_id);

-- Calling assignments. expected_release_date and release_notes are local
-- annotations restored from the pre-sync snapshot after each rebuild.
CREATE TABLE IF NOT EXISTS calling_assignments (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    calling_id TEXT NOT NULL REFERENCES callings(id),
    member_id TEXT NOT NULL REFERENCES members(id),
    is_active INTEGER NOT NULL DEFAULT 1,
    assigned_date TEXT,
    sustained_date TEXT,
    set_apart_date TEXT,
    expected_release_date TEXT,
    release_notes TEXT
);

CREATE INDEX IF NOT EXISTS idx_assignments_calling ON calling_assignments(calling_id);
CREATE INDEX IF NOT EXISTS idx_assignments_member ON calling_assignments(member_id);

-- Pre-sync snapshot: natural-key identity of every active assignment plus
-- the locally-entered fields, captured immediately before the hard refresh
-- and read once near the end of the same run.
CREATE TABLE IF NOT EXISTS pre_sync_calling_snapshot (
    calling_org_name TEXT NOT NULL,
    calling_title TEXT NOT NULL,
    member_church_id INTEGER NOT NULL,
    member_first_name TEXT,
    member_last_name TEXT,
    sustained_date TEXT,
    set_apart_date TEXT,
    is_active INTEGER NOT NULL DEFAULT 1,
    expected_release_date TEXT,
    release_notes TEXT
);

-- Calling changes. Surrogate id columns are caches re-linked after each hard
-- refresh; the *_org_name/*_title/*_church_id columns are the durable identity.
CREATE TABLE IF NOT EXISTS calling_changes (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    calling_id TEXT,
    calling_org_name TEXT,
    calling_title TEXT,
    new_member_id TEXT,
    new_member_church_id INTEGER,
    current_member_id TEXT,
    current_member_church_id INTEGER,
    status TEXT NOT NULL DEFAULT 'pending',
    source TEXT NOT NULL DEFAULT 'app',
    detected_at DATETIME,
    created_date TEXT
);

CREATE INDEX IF NOT EXISTS idx_changes_status ON calling_changes(status);
CREATE INDEX IF NOT EXISTS idx_changes_natural_key ON calling_changes(calling_org_name, calling_title);

-- Tasks (follow-up work items attached to calling changes)
CREATE TABLE IF NOT EXISTS tasks (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    calling_change_id INTEGER NOT NULL REFERENCES calling_changes(id),
    task_type TEXT NOT NULL,
    member_id TEXT,
    member_church_id INTEGER,
    status TEXT NOT NULL DEFAULT 'pending',
    notes TEXT
);

CREATE INDEX IF NOT EXISTS idx_tasks_change ON tasks(calling_change_id);

-- Youth interviews (rebuilt from the external snapshot every run)
CREATE TABLE IF NOT EXISTS youth_interviews (
    member_id TEXT NOT NULL REFERENCES members(id),
    interview_type TEXT NOT NULL,
    api_interview_type TEXT,
    is_due INTEGER NOT NULL DEFAULT 1,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (member_id, interview_type)
);

-- App workflow tables. Populated outside the sync; they participate here only
-- because their cached surrogate ids must be re-linked after a hard refresh.
CREATE TABLE IF NOT EXISTS calling_considerations (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    member_id TEXT,
    member_church_id INTEGER,
    calling_org_name TEXT,
    calling_title TEXT,
    notes TEXT,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS member_calling_needs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    member_id TEXT,
    member_church_id INTEGER,
    need TEXT,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS bishopric_stewardships (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    organization_id TEXT,
    organization_name TEXT,
    counselor TEXT
);
`
