// Package domain models generator outage records published by the JEPX
// power plant operation information service (HJKS) and turns them into an
// hourly, per-generation-type timeline of capacity taken offline.
//
// # Data Source
//
// The upstream listing at https://hjks.jepx.or.jp/hjks/outages returns a JSON
// document that is either a bare array of records or an object carrying the
// array under "records" (with a "total" count beside it). Snapshots are saved
// once a day as outages_data_YYYYMMDD.json. Fetching them is handled outside
// this service.
//
// # HJKS Data Conventions
//
// Fields consumed:
//
//	area          supply area, e.g. "東京"
//	format        generation type, e.g. "火力（ガス）"
//	startdt       outage start, "YYYY/MM/DD HH:MM"
//	restartschdt  scheduled restart, "YYYY/MM/DD" or "YYYY/MM/DD HH:MM"; often absent
//	downcapacity  capacity offline in kW, comma grouped: "1,200,000"
//	maxcapacity   unit nameplate capacity in kW, same encoding
//
// All timestamps are Japan Standard Time (UTC+09:00, no daylight saving).
//
// Defaults:
//
//	restartschdt absent or blank  →  2100/01/01 00:00, i.e. still down.
//	downcapacity absent           →  maxcapacity, then 0.
//
// Substituting maxcapacity for a missing downcapacity mixes two different
// quantities (potential versus actual outage size). The tool this service
// replaces did so and operators compare against its charts, so the
// substitution is kept and flagged on the record via CapacityFromMax.
//
// Generation types:
//
//	原子力          Nuclear
//	水力            Hydro
//	火力（石炭）    Thermal (Coal)
//	火力（ガス）    Thermal (Gas)
//	火力（石油）    Thermal (Oil)
//	地熱            Geothermal
//	風力            Wind
//	太陽光・太陽熱  Solar
//	その他          Other
//
// The list order is also the stacking order of the chart layers. Raw values
// outside the table are not errors: they are kept through filtering when the
// caller selects every type and then left out of the timeline columns.
//
// # Temporal Selection
//
// Two inclusion rules exist for matching a record against a requested range.
// [PolicyOverlap] compares calendar dates and keeps every record whose outage
// intersects the range. [PolicyEndpoint] keeps a record only when its start or
// its end timestamp falls inside the range, so an outage spanning the whole
// range is dropped. Overlap is the default.
//
// # Aggregation
//
// The timeline grid has one row per hour from the range start to the range
// end, both inclusive. A record contributes its magnitude to every row whose
// timestamp t satisfies start <= t < end. Contributions in the same category
// add up. A record whose end is not after its start contributes nothing.
package domain
