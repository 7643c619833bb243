/*
Audit decodes broker audit trail files (FIX messages logged as XML) into records.

# Module
  - dictionary: tag -> field name, coded value -> description
  - normalizer: raw entry -> record, drops irrelevant entry types
  - reader: token stream over the document, one Entry at a time
  - decoder: file -> records, progress reporting

# Source
  - audit trail xml, a sequence of <Entry type msgId> with <field tag val> children

# Produce
  - records in file order, consumed by schema (csv) and obs (summary)

Decoding streams the input but keeps every kept record in memory, because the
csv header needs the union of all field names before the first row. A two pass
variant (collect columns, then re-read and stream rows) would bound memory by
one entry at the cost of reading the file twice.
*/
package audit
