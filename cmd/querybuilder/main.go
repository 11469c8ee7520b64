// Querybuilder edits stored boolean search queries and renders them as Solr
// query strings.
//
// Each named query is a tree of clauses and clause groups. Every command
// loads the tree from the configured store, applies one edit and saves it
// back, printing the resulting query string.
//
// Usage:
//
//	# Start a query and fill in its first clause
//	querybuilder new books
//	querybuilder show books
//	querybuilder set-field books <clause-id> title
//	querybuilder set-value books <clause-id> "war and peace"
//
//	# Add more clauses and groups
//	querybuilder add-clause books --field CREATOR --value Tolstoy
//	querybuilder add-group books --parent <group-id>
//
//	# Render the Solr query
//	querybuilder serialize books
//
//	# Move queries between stores and formats
//	querybuilder export books --format xml -o books.xml
//	querybuilder import books-copy books.xml
package main

func main() {
	Execute()
}
