package endpoints

import "github.com/smolnetwork/smolnet"

// dataCall provides the defaults shared by plain JSON endpoints: a GET
// without parameters, exchanged in memory.
type dataCall struct{}

func (dataCall) Method() smolnet.Method             { return smolnet.GET }
func (dataCall) Parameters() smolnet.Param          { return nil }
func (dataCall) TransferMode() smolnet.TransferMode { return smolnet.Data }
func (dataCall) ResponseKind() smolnet.ResponseKind { return smolnet.JSON }
func (dataCall) Progress() smolnet.ProgressFunc     { return nil }
