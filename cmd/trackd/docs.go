package main

// General API documentation for swaggo. Run swag against this package to
// regenerate docs.
//
// @title           trackd API
// @version         1.0
// @description     HTTP surface for inspecting and editing live tracked state.
//
// @BasePath  /
//
// @schemes http
