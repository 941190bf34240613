// Package mapping provides the ingest manifest grammar: YAML parsing into a
// closed set of expression and output node types, and load-time validation.
//
// A manifest describes how the columns of one raw row turn into a tree of
// entities. It is parsed and validated once and then reused, read-only, for
// every row of a run.
//
// # Schema Overview
//
//	manifest_language: 1.0.0
//	input_columns: [ID, NAME, EXIT, CHARGES, ROW_NUM]
//	unused_columns: [ROW_NUM]
//	primary_key: [ID]
//	id_fields: [external_id]
//	variables:
//	  - charge_list:
//	      $split_json: CHARGES
//	output:
//	  Sentence:
//	    external_id: ID
//	    status:
//	      $enum_mapping:
//	        $raw_text: EXIT
//	        $mappings:
//	          COMPLETED: ["40"]
//	    charges:
//	      - Charge:
//	          description: NAME
//	      - $foreach:
//	          $iterable: $variable(charge_list)
//	          $result:
//	            Charge:
//	              code:
//	                $json_extract:
//	                  $key: code
//	                  $json: $iter_item
//
// # Expressions
//
// A bare string is a column reference. Everything else is introduced by a
// $-prefixed keyword, either inline ($literal("x"), $variable(name),
// $iter_item, $null) or as the single key of a mapping ($concat,
// $conditional, $is_null, $not_null, $equal, $in, $not_in, $and, $or,
// $not, $enum_mapping, $json_extract, $split_json, $split, $custom,
// $foreach).
//
// # Output
//
// A mapping with a single non-$ key is an entity constructor; the key is
// the entity type. Entity fields hold an expression, a nested entity, or a
// list whose items are entities, $foreach blocks or $conditional blocks
// yielding entities.
//
// # Validation
//
// Validate collects every problem instead of stopping at the first one:
// column coverage (each input column is either referenced or declared
// unused, never both), variable references and cycles, list/scalar shape,
// $iter_item placement, enum table ambiguity and, when a registry is
// supplied, custom function names.
package mapping
