// Package http provides request and response helpers for the inspection API.
//
// # Request
//
//	req := gohttp.NewRequest(r)
//
//	var payload struct {
//	    Timeout string `json:"timeout"`
//	}
//	if err := req.Bind(&payload); err != nil { ... }
//
//	timeout := req.Query("timeout", "5s")
//	input, err := req.All()     // query + form or JSON body, map[string]string
//	id := req.RouteParam("id")  // requires the chi router
//	reqID := req.ID()           // chi request id, also sent as X-Request-Id
//
//	d := gohttp.Duration(input, "timeout", 5*time.Second)
//
// # Response
//
//	res := gohttp.NewResponse(w)
//
//	res.JSON(200, data)            // raw JSON with status
//	res.Success(data)              // 200 {"data": ...}
//	res.Error(503, "draining")     // {"message": "draining"}
//	res.Fail(500, msg, view)       // {"message": msg, "data": view}
//	res.BadRequest()               // 400 {"message": "Bad request."}
//	res.NotFound()                 // 404 {"message": "Not found."}
//	res.ServerError()              // 500 {"message": "Server Error."}
//	res.Timeout()                  // 504 {"message": "Timed out."}
//	res.ValidationError(errs)      // 422 {"errors": {"field": ["msg"]}}
package http
