// Package communication contains the Communication bounded context.
// This context is responsible for letter templates, the field catalog that
// binds template placeholders to member data, and the ledger of generated
// letters. Templates and letters are tenant-scoped; the field catalog is global.
package communication
