package mysql

const leadColumns = "source_store, bundle_id, app_name, developer, rating, ratings_count, last_update, " +
	"country, category, app_url, reviews_url, website, support_email, " +
	"linkedin_guess, contact_status, loom_status, outreach_owner, date_found"

const insertLeadsPrefix = "INSERT INTO leads\n  (" + leadColumns + ", run_id)\nVALUES "

const leadRowPlaceholders = "(?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)"

// Store data wins on conflict. The outreach columns belong to whoever works
// the list, so an empty incoming value never clears them; date_found keeps
// the first sighting.
const insertLeadsOnDup = " ON DUPLICATE KEY UPDATE\n" +
	"  app_name       = VALUES(app_name),\n" +
	"  developer      = VALUES(developer),\n" +
	"  rating         = VALUES(rating),\n" +
	"  ratings_count  = VALUES(ratings_count),\n" +
	"  last_update    = VALUES(last_update),\n" +
	"  country        = VALUES(country),\n" +
	"  category       = VALUES(category),\n" +
	"  app_url        = VALUES(app_url),\n" +
	"  reviews_url    = VALUES(reviews_url),\n" +
	"  website        = VALUES(website),\n" +
	"  support_email  = VALUES(support_email),\n" +
	"  linkedin_guess = COALESCE(NULLIF(VALUES(linkedin_guess), ''), leads.linkedin_guess),\n" +
	"  contact_status = COALESCE(NULLIF(VALUES(contact_status), ''), leads.contact_status),\n" +
	"  loom_status    = COALESCE(NULLIF(VALUES(loom_status), ''), leads.loom_status),\n" +
	"  outreach_owner = COALESCE(NULLIF(VALUES(outreach_owner), ''), leads.outreach_owner),\n" +
	"  run_id         = VALUES(run_id),\n" +
	"  last_seen_at   = CURRENT_TIMESTAMP\n"

const insertMissesPrefix = "INSERT INTO search_misses (run_id, store, stage, keyword, app_id, message)\nVALUES "

// -----------------------------------------------------------------------------
// READ QUERIES
// -----------------------------------------------------------------------------

const getLeadSQL = "SELECT " + leadColumns + "\nFROM leads\nWHERE source_store = ? AND bundle_id = ?"

// Same order the CSV uses.
const listLeadsSQL = "SELECT " + leadColumns + "\nFROM leads\n%s\nORDER BY rating ASC, ratings_count DESC, source_store, bundle_id\nLIMIT ?"
