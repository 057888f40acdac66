/*
Gallery-tags maintains the curated data the ingester never writes: tags
with their localized names, item to tag links and item translations.

Usage:

	gallery-tags <command> [arguments]

The commands are:

	upsert <tag> [en=Name pl=Nazwa uk=Назва]
		Create a tag or update the given localized names.
	delete <tag>
		Delete a tag together with its item links.
	link <item> <tag>
		Attach a tag to an item. Linking twice is a no-op.
	unlink <item> <tag>
		Detach a tag from an item.
	list
		Print every tag with its item count and names.
	translate <item> <locale> <field> <value>
		Overwrite the title, alt or description of an item in one locale.

The database is opened from DATABASE_DIR. Changes become visible to a
running server once its response cache expires, or immediately after it
receives SIGHUP.
*/
package main
