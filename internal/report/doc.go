// Package report renders cohort views for humans and machines.
//
// text.go and table.go write aligned terminal tables: the heatmap rows, the
// comparison series, the four summary cards and fired rules. Colors come from
// color.go and are switched off with SetColor(false).
//
// json.go writes views as indented JSON in the dashboard's wire shape.
//
// textfile.go turns views into Prometheus metric families and writes them in
// the text exposition format, suitable for node_exporter's textfile
// collector. ParseTextfile reads such a file back.
package report
