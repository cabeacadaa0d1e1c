package server

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/Daskott/minicrm/server/models"
	"github.com/Daskott/minicrm/utils"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
)

const msgMissing = "is missing"

// ---------------------------------------------------------------------------------//
// Handler Helper functions
// --------------------------------------------------------------------------------//

func writeResponse(rw http.ResponseWriter, payLoad interface{}, statusCode int) {
	if errPayload, ok := payLoad.(ErrorPayload); ok {
		if statusCode >= http.StatusInternalServerError {
			logg.Error(errPayload.Errors)
		} else if statusCode >= http.StatusBadRequest {
			logg.Info(errPayload.Errors)
		}
	}

	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(statusCode)
	json.NewEncoder(rw).Encode(payLoad)
}

// writeError maps a store error onto its response: validation failures are
// 422, missing records 404 and anything else a 500 with the cause logged.
func writeError(rw http.ResponseWriter, err error) {
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		writeResponse(rw, ErrorPayload{Errors: verr.Errors}, http.StatusUnprocessableEntity)
		return
	}

	if errors.Is(err, models.ErrNotFound) {
		writeResponse(rw, fieldErrors("base", err.Error()), http.StatusNotFound)
		return
	}

	logg.Errorf("%+v", err)
	writeResponse(rw, fieldErrors("base", http.StatusText(http.StatusInternalServerError)), http.StatusInternalServerError)
}

func fieldErrors(field string, messages ...string) ErrorPayload {
	return ErrorPayload{Errors: map[string][]string{field: messages}}
}

// decodeRequest strictly decodes a single JSON object from the request body
// into dst. It writes the error response itself and returns false when the
// body is unusable.
func decodeRequest(rw http.ResponseWriter, r *http.Request, dst interface{}) bool {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	err := decoder.Decode(dst)
	if err == nil && decoder.More() {
		err = errors.New("body must contain a single JSON object")
	}

	if err == nil {
		return true
	}

	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		writeResponse(rw, fieldErrors("base", "request body is too large"), http.StatusRequestEntityTooLarge)
		return false
	}

	writeResponse(rw, fieldErrors("base", err.Error()), http.StatusBadRequest)
	return false
}

// pathID reads a numeric route variable. Ids too large to be stored can't
// match any record, so they are reported as not found.
func pathID(rw http.ResponseWriter, r *http.Request, name string) (uint, bool) {
	raw := mux.Vars(r)[name]

	id, err := strconv.ParseUint(raw, 10, strconv.IntSize)
	if err != nil {
		model := "Contact"
		if name == "note_id" {
			model = "Note"
		}
		writeError(rw, &models.NotFoundError{Model: model, ID: raw})
		return 0, false
	}

	return uint(id), true
}

func notePathIDs(rw http.ResponseWriter, r *http.Request) (uint, uint, bool) {
	contactID, ok := pathID(rw, r, "id")
	if !ok {
		return 0, 0, false
	}

	noteID, ok := pathID(rw, r, "note_id")
	if !ok {
		return 0, 0, false
	}

	return contactID, noteID, true
}

// ---------------------------------------------------------------------------------//
// Server Helper functions
// --------------------------------------------------------------------------------//

func serve(server *http.Server) {
	logg.Infof("minicrm server is listening on port%v", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Fatal(err)
	}
}

func cleanup(server *http.Server, timeout time.Duration) {
	// Shutdown server gracefully
	ctxShutDown, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := server.Shutdown(ctxShutDown); err != nil {
		logg.Fatalf("minicrm server shutdown failed:%+s", err)
	}

	logg.Infof("minicrm server stopped properly")
}

// ConfigDirectory returns the directory that holds the server's db and
// configs, creating it when missing. It is './dev' in dev mode and
// '~/minicrm' otherwise.
func ConfigDirectory(devMode bool) (string, error) {
	configFolderName := "minicrm"
	rootDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	if devMode {
		configFolderName = "dev"
		rootDir, err = os.Getwd()
		if err != nil {
			return "", err
		}
	}

	configDir := filepath.Join(rootDir, configFolderName)

	err = utils.CreateDirIfNotExist(configDir)
	if err != nil {
		return "", err
	}

	return configDir, nil
}

func fatalOnError(err error) {
	if err != nil {
		logg.Fatal(err)
	}
}
