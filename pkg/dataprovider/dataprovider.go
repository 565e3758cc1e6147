// Package dataprovider maps the admin UI data access verbs to a JSONAPI-like REST API.
//
// Each invocation of Provider.Request takes a verb, a resource name and the verb parameters.
// It resolves the settings, maps them to one HTTP request (see the Map function),
// sends it by the request.Sender and normalizes the response (see the Normalize function).
//
//	| Verb     | Request                                          | Result                                 |
//	|----------|--------------------------------------------------|----------------------------------------|
//	| GET_LIST | GET {root}/{res}?range[0]={start}&range[1]={end} | ListResult{data, meta[total]}          |
//	| GET_ONE  | GET {root}/{res}/{id}                            | RecordResult, body as-is               |
//	| CREATE   | POST {root}/{res}, body JSON(data)               | RecordResult, body as-is               |
//	| UPDATE   | PUT {root}/{res}/{id}, body JSON(data)           | RecordResult, body as-is               |
//	| DELETE   | DELETE {root}/{res}/{id}                         | DeleteResult{data: {id}}, body ignored |
//	| GET_MANY | GET {root}/{res}?filter=JSON({"ids": [...]})     | ListResult{data, meta[total]}          |
//
// Requests are immutable definitions, nothing is sent until the Send method is called.
package dataprovider
